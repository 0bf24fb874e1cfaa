package Controllers_test

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/gin-gonic/gin"
)

// newMultipartCSV menulis satu file field ke buffer multipart dan
// mengembalikan Content-Type header yang harus dipakai request.
func newMultipartCSV(t *testing.T, buf *bytes.Buffer, field, filename, content string) string {
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return writer.FormDataContentType()
}

// fakeAuth menyuntikkan user_id dan role ke context seperti yang
// dilakukan AuthMiddleware setelah memverifikasi JWT.
func fakeAuth(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}
