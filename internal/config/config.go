package config

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/models"
)

type Config struct {
	DB_HOST           string
	DB_PORT           string
	DB_USER           string
	DB_PASSWORD       string
	DB_NAME           string
	ES_URL            string
	ES_USER           string
	ES_PASSWORD       string
	ES_INDEX          string
	JWT_SECRET        string
	REFRESH_SECRET    string
	KAFKA_ADDRESS     string
	SMTP_HOST         string
	SMTP_PORT         string
	SMTP_USER         string
	SMTP_PASSWORD     string
	SMTP_FROM         string
	VAPID_PUBLIC_KEY  string
	VAPID_PRIVATE_KEY string
	VAPID_SUBJECT     string
	EMAIL_CHECK_URL   string
	EMAIL_CHECK_KEY   string
	FRONTEND_URL      string
	LOG_LEVEL         string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:           os.Getenv("DB_HOST"),
		DB_PORT:           os.Getenv("DB_PORT"),
		DB_USER:           os.Getenv("DB_USER"),
		DB_PASSWORD:       os.Getenv("DB_PASSWORD"),
		DB_NAME:           os.Getenv("DB_NAME"),
		ES_URL:            os.Getenv("ES_URL"),
		ES_USER:           os.Getenv("ES_USER"),
		ES_PASSWORD:       os.Getenv("ES_PASSWORD"),
		ES_INDEX:          os.Getenv("ES_INDEX"),
		JWT_SECRET:        os.Getenv("JWT_SECRET"),
		REFRESH_SECRET:    os.Getenv("REFRESH_SECRET"),
		KAFKA_ADDRESS:     os.Getenv("KAFKA_ADDRESS"),
		SMTP_HOST:         os.Getenv("SMTP_HOST"),
		SMTP_PORT:         os.Getenv("SMTP_PORT"),
		SMTP_USER:         os.Getenv("SMTP_USER"),
		SMTP_PASSWORD:     os.Getenv("SMTP_PASSWORD"),
		SMTP_FROM:         os.Getenv("SMTP_FROM"),
		VAPID_PUBLIC_KEY:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPID_PRIVATE_KEY: os.Getenv("VAPID_PRIVATE_KEY"),
		VAPID_SUBJECT:     os.Getenv("VAPID_SUBJECT"),
		EMAIL_CHECK_URL:   os.Getenv("EMAIL_CHECK_URL"),
		EMAIL_CHECK_KEY:   os.Getenv("EMAIL_CHECK_KEY"),
		FRONTEND_URL:      os.Getenv("FRONTEND_URL"),
		LOG_LEVEL:         os.Getenv("LOG_LEVEL"),
	}
	if config.ES_INDEX == "" {
		config.ES_INDEX = "products"
	}

	return config, nil
}

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

func InitDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DB_USER, cfg.DB_PASSWORD, cfg.DB_HOST, cfg.DB_PORT, cfg.DB_NAME,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	configurePool(sqlDB)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate is shared with the test environment, which runs it against an
// in-memory sqlite database.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.RefreshToken{},
		&models.Cart{},
		&models.CartProduct{},
		&models.Product{},
		&models.Category{},
		&models.SubCategory{},
		&models.SubCategoryTag{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Invoice{},
		&models.Subscriber{},
		&models.Notification{},
		&models.SubscriberNotification{},
		&models.EmailVerification{},
		&models.ForgottenPassword{},
	); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}
