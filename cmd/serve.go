package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"shul-backend/controllers"
	"shul-backend/gateway"
	"shul-backend/logger"
	"shul-backend/middlewares"
	"shul-backend/routes"
	"shul-backend/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	if err := connect(); err != nil {
		return err
	}
	middlewares.ConfigureAuth(cfg.JWTSecret, cfg.JWTTTL)

	var key *[32]byte
	if cfg.SecretKey != "" {
		k, err := utils.SealKey(cfg.SecretKey)
		if err != nil {
			return err
		}
		key = k
	} else {
		log.Warn().Msg("SECRET_KEY not set, payment processors cannot be configured")
	}
	controllers.Configure(gateway.NewResolver(key, cfg.GatewayTimeout), key)

	app := newApp()
	if cfg.RedisURL != "" {
		storage, err := middlewares.NewRedisStorage(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer storage.Close()
		app.Use(middlewares.RateLimit(cfg.RateLimitMax, cfg.RateLimitWindow, storage))
	} else {
		app.Use(middlewares.RateLimit(cfg.RateLimitMax, cfg.RateLimitWindow, nil))
	}
	routes.Register(app)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("API server starting")
	return app.Listen(":" + cfg.Port)
}

// newApp builds the fiber app with the global middleware stack.
func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    cfg.BodyLimitBytes,
		AppName:      "shul-backend " + version,
	})
	app.Use(recover.New())
	app.Use(middlewares.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key, If-Match",
	}))
	return app
}
