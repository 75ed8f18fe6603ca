package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	amqp "github.com/streadway/amqp"
	"gorm.io/gorm"

	"github.com/example/invithe/internal/config"
	"github.com/example/invithe/internal/database"
	"github.com/example/invithe/internal/models"
	"github.com/example/invithe/internal/routes"
	"github.com/example/invithe/internal/services"
	"github.com/example/invithe/internal/utils"
	"github.com/example/invithe/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	ensureAdminAccount(db, cfg)

	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, order events disabled: %v", err)
		} else {
			defer mqClient.Close()
			events = mqClient

			go func() {
				if err := mqClient.ConsumeOrderEvents(func(msg amqp.Delivery) error {
					log.Printf("[Events] %s", msg.Body)
					return nil
				}); err != nil {
					log.Printf("order event consumer stopped: %v", err)
				}
			}()
		}
	}

	app := fiber.New(fiber.Config{
		AppName: "InviThe Gourmand Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, cfg, events)

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}

// ensureAdminAccount seeds the back-office account from the environment on
// first boot so a fresh deployment can log in.
func ensureAdminAccount(db *gorm.DB, cfg *config.Config) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}

	var count int64
	if err := db.Model(&models.Admin{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		log.Printf("admin bootstrap check failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Printf("admin bootstrap hash failed: %v", err)
		return
	}

	admin := models.Admin{Email: cfg.AdminEmail, Name: "Administrateur", PasswordHash: hash}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("admin bootstrap failed: %v", err)
		return
	}

	log.Printf("admin account %s created", cfg.AdminEmail)
}
