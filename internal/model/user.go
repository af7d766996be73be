// Package model defines database models
package model

import "time"

type User struct {
	ID             string `gorm:"primaryKey"`
	Name           string `gorm:"not null"`
	Email          string `gorm:"uniqueIndex;not null"`
	PasswordDigest string `gorm:"not null"`
	// Nil once the account is verified
	VerificationCode *string
	Verified         bool `gorm:"not null;default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
