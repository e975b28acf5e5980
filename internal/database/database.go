package database

import (
	"log"
	"strings"

	"dinein/internal/domain"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

type Option func(*gorm.Config)

// Silent turns off the gorm query logger.
func Silent() Option {
	return func(c *gorm.Config) {
		c.Logger = logger.Default.LogMode(logger.Silent)
	}
}

func Connect(dsn string, opts ...Option) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Table{},
		&domain.Customer{},
		&domain.MenuItem{},
		&domain.Reservation{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Bill{},
	)
}
