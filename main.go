package main

import (
	"bitwise74/mailverify/app"
	"bitwise74/mailverify/config"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Setup()
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router, err := app.NewRouter(ctx, cfg)
	if err != nil {
		panic(err)
	}

	addr := fmt.Sprintf(":%d", cfg.Host.Port)
	zap.L().Info("Server starting", zap.String("addr", addr), zap.Bool("ssl", cfg.Host.SSL.Enabled))

	if cfg.Host.SSL.Enabled {
		err = router.RunTLS(addr, cfg.Host.SSL.CertificatePath, cfg.Host.SSL.CertificateKeyPath)
	} else {
		err = router.Run(addr)
	}

	if err != nil {
		panic(err)
	}
}
