package models

import "time"

// Role of a backend account
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the account behind the visitor's backend session
type User struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
	Role          Role   `json:"role"`
}

// Credentials for the login mutation
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Conversation summarises a private thread with another user
type Conversation struct {
	UserID        int64      `json:"userId"`
	Username      string     `json:"username"`
	LastMessage   string     `json:"lastMessage"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
	UnreadCount   int        `json:"unreadCount"`
}

// Message within a conversation
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	IsRead     bool      `json:"isRead"`
}

// NewMessage is the send-message payload
type NewMessage struct {
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
}
