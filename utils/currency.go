package utils

import (
	"fmt"
	"math"
	"strconv"
)

// FormatCurrencyIDR memformat nominal ke format Rupiah untuk laporan.
// Contoh: 15000 -> "Rp 15.000", 15000.5 -> "Rp 15.000,50".
func FormatCurrencyIDR(amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	integer := int64(amount)
	cents := int64(math.Round((amount - float64(integer)) * 100))
	if cents == 100 {
		integer++
		cents = 0
	}

	// Sisipkan titik ribuan dari kanan
	digits := strconv.FormatInt(integer, 10)
	grouped := ""
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped += "."
		}
		grouped += string(d)
	}

	out := "Rp " + grouped
	if cents > 0 {
		out += fmt.Sprintf(",%02d", cents)
	}
	if negative {
		out = "-" + out
	}
	return out
}
