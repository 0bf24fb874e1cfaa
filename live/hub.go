package live

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/utils"
)

// Event types
const (
	EventMenuItemUpdate   = "menu_item_update"
	EventWeeklyMenuUpdate = "weekly_menu_update"
	EventOrderUpdate      = "order_update"
	EventWalletUpdate     = "wallet_update"
	EventTopupUpdate      = "topup_update"
	EventNotification     = "notification"
	EventAdminNotif       = "admin_notification"
	EventDashboardUpdate  = "dashboard_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type client struct {
	role   string // admin, parent
	userID uint
}

// Hub menampung semua client live (admin dashboard, aplikasi parent)
// dan menyiarkan event saat ada write yang relevan.
type Hub struct {
	clients map[*websocket.Conn]client
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]client),
}

// RegisterClient -> menambahkan connection ke set dengan role dan user id.
// Parent yang baru connect langsung menerima jumlah notifikasi belum dibaca
// sebagai pesan pembuka.
func RegisterClient(conn *websocket.Conn, role string, userID uint) {
	hub.mutex.Lock()
	hub.clients[conn] = client{role: role, userID: userID}
	hub.mutex.Unlock()

	if role != "parent" {
		return
	}
	db := utils.GetDB()
	if db == nil {
		return
	}

	var unread int64
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&unread).Error; err != nil {
		log.Printf("Error counting unread notifications: %v", err)
		return
	}

	data, err := json.Marshal(Message{
		Event: EventNotification,
		Data:  map[string]interface{}{"unread": unread},
	})
	if err != nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("Error sending welcome message: %v", err)
	}
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastMenuItemUpdate -> perubahan katalog (semua client)
func BroadcastMenuItemUpdate(item models.MenuItem) {
	broadcast(Message{Event: EventMenuItemUpdate, Data: item}, nil)
}

// BroadcastWeeklyMenuUpdate -> perubahan menu mingguan (semua client)
func BroadcastWeeklyMenuUpdate(menu models.WeeklyMenu) {
	broadcast(Message{Event: EventWeeklyMenuUpdate, Data: menu}, nil)
}

// BroadcastOrderUpdate -> update order ke admin dan parent pemilik order
func BroadcastOrderUpdate(order models.Order) {
	broadcast(Message{Event: EventOrderUpdate, Data: order}, nil)
}

// BroadcastWalletUpdate -> saldo berubah, kirim ke parent terkait saja
func BroadcastWalletUpdate(userID uint, balance float64) {
	broadcastToUser(userID, Message{
		Event: EventWalletUpdate,
		Data:  map[string]interface{}{"balance": balance},
	})
}

// BroadcastTopupUpdate -> perubahan status top-up
func BroadcastTopupUpdate(topup models.Topup) {
	broadcast(Message{Event: EventTopupUpdate, Data: topup}, nil)
}

// BroadcastNotification -> notifikasi untuk satu user
func BroadcastNotification(userID uint, notif models.Notification) {
	broadcastToUser(userID, Message{Event: EventNotification, Data: notif})
}

// BroadcastAdminNotification -> notifikasi khusus admin (order baru, topup pending)
func BroadcastAdminNotification(message string) {
	role := "admin"
	broadcast(Message{Event: EventAdminNotif, Data: message}, &role)
}

// BroadcastDashboardUpdate -> update dashboard admin
func BroadcastDashboardUpdate(data interface{}) {
	role := "admin"
	broadcast(Message{Event: EventDashboardUpdate, Data: data}, &role)
}

// BroadcastMessage -> broadcast pesan umum
func BroadcastMessage(msg Message) {
	broadcast(msg, nil)
}

// broadcast -> kirim pesan ke semua client, atau hanya ke role tertentu
func broadcast(msg Message, onlyRole *string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, cl := range hub.clients {
		if onlyRole != nil && cl.role != *onlyRole {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}

func broadcastToUser(userID uint, msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, cl := range hub.clients {
		// admin juga menerima event per-user untuk monitoring
		if cl.userID != userID && cl.role != "admin" {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
