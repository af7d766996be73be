package internal

import (
	"bitwise74/mailverify/config"
	"bitwise74/mailverify/internal/service"

	"gorm.io/gorm"
)

// Deps is everything a request handler may need
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Accounts *service.Accounts
}
