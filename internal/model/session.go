package model

import "time"

// Session is a server side login. The browser only holds a signed token
// carrying the session ID.
type Session struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
}
