// Package app wires the HTTP surface: middleware, templates and routes
package app

import (
	"bitwise74/mailverify/app/root"
	"bitwise74/mailverify/app/session"
	"bitwise74/mailverify/app/user"
	"bitwise74/mailverify/app/view"
	"bitwise74/mailverify/config"
	"bitwise74/mailverify/db"
	"bitwise74/mailverify/internal"
	"bitwise74/mailverify/internal/repo"
	"bitwise74/mailverify/internal/service"
	"bitwise74/mailverify/pkg/middleware"
	"bitwise74/mailverify/pkg/security"
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

// NewRouter connects to every backing service named in cfg and returns the
// ready to serve engine. Background jobs stop when ctx is done.
func NewRouter(ctx context.Context, cfg *config.Config) (*gin.Engine, error) {
	if err := makeLogger(cfg.App.LogLevel); err != nil {
		return nil, err
	}

	conn, err := db.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", cfg.Database.Driver, err)
	}

	var sessions repo.SessionStore

	switch cfg.Session.Store {
	case "redis":
		rdb, err := repo.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}

		sessions = repo.NewRedisSessions(rdb)
	default:
		s := repo.NewDBSessions(conn)
		sessions = s

		// Expired rows are already ignored on read, this only keeps the
		// table small
		service.SessionCleanup(ctx, time.Hour, s)
	}

	mailer, err := service.NewMailer(cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer, %w", err)
	}

	d := &internal.Deps{
		Config: cfg,
		DB:     conn,
		Accounts: service.NewAccounts(&service.AccountsOpts{
			Users:      repo.NewUsers(conn),
			Sessions:   sessions,
			Argon:      security.New(),
			Signer:     security.NewSessionSigner(cfg.Security.SessionSecret),
			Mailer:     mailer,
			SessionTTL: cfg.Session.TTL,
		}),
	}

	return Routes(d), nil
}

// Routes builds the engine around already constructed dependencies
func Routes(d *internal.Deps) *gin.Engine {
	router := gin.New()

	if len(d.Config.Host.CORS) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     d.Config.Host.CORS,
			AllowMethods:     []string{"GET", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.CSRFHeader},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.Use(
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		middleware.NewCookieMiddleware(d.Config.Host.SSL.Enabled),
		middleware.NewSessionMiddleware(d.Accounts),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		middleware.BodySizeLimiter(1<<20),
		middleware.NewCSRFMiddleware(view.Forbidden),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	router.SetHTMLTemplate(view.Templates())
	router.NoRoute(view.NotFound)

	// HEAD /heartbeat			-> Used to check if the server is alive
	router.HEAD("/heartbeat", func(c *gin.Context) { root.Heartbeat(c, d) })

	// GET /				-> Registration form
	router.GET("/", user.UserNew)

	u := router.Group("/users")
	{
		// GET /users/new			-> Registration form
		u.GET("/new", user.UserNew)

		// POST /users			-> Registers a new user and mails a code
		u.POST("", func(c *gin.Context) { user.UserCreate(c, d) })

		// GET /users/:id			-> Profile page
		u.GET("/:id", func(c *gin.Context) { user.UserShow(c, d) })

		// GET /users/:id/verify		-> Code entry form
		u.GET("/:id/verify", func(c *gin.Context) { user.UserVerify(c, d) })

		// POST /users/:id/confirm_verification	-> Checks a submitted code
		u.POST("/:id/confirm_verification", func(c *gin.Context) { user.UserConfirmVerification(c, d) })

		// POST /users/:id/resend_verification_code	-> Issues and mails a new code
		u.POST("/:id/resend_verification_code", func(c *gin.Context) { user.UserResendVerificationCode(c, d) })
	}

	s := router.Group("/sessions")
	{
		// GET /sessions/new		-> Login form
		s.GET("/new", session.SessionNew)

		// POST /sessions		-> Logs in a user
		s.POST("", func(c *gin.Context) { session.SessionCreate(c, d) })
	}

	// DELETE /logout			-> Logs out, POST is for plain HTML forms
	router.DELETE("/logout", func(c *gin.Context) { session.SessionDestroy(c, d) })
	router.POST("/logout", func(c *gin.Context) { session.SessionDestroy(c, d) })

	return router
}

func makeLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level, %w", err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger, %w", err)
	}

	zap.ReplaceGlobals(log)
	return nil
}
