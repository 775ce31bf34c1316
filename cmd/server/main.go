package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"tech2gether/internal/auth"
	"tech2gether/internal/config"
	"tech2gether/internal/database"
	"tech2gether/internal/handlers"
	"tech2gether/internal/mail"
	pauth "tech2gether/internal/platform/auth"
	"tech2gether/internal/platform/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.VerificationTokenTTL, cfg.ResetTokenTTL)
	lockouts := auth.NewLockoutTracker(cfg.LockoutThreshold, cfg.LockoutDuration)
	mailer := mail.NewMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase)
	sender := mail.NewSender(mailer, cfg.EmailFrom, cfg.EmailFromName, cfg.FrontendBaseURL, cfg.APIBaseURL)

	authService := pauth.NewService(user.NewService(db), issuer, lockouts, sender)

	app := fiber.New()

	app.Use(compress.New())
	app.Use(helmet.New())
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(healthcheck.New())

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("db", db)
		c.Locals("auth", authService)
		return c.Next()
	})

	handlers.SetupRoutes(app)

	log.Fatal(app.Listen(fmt.Sprintf(":%d", cfg.ServerPort)))
}
