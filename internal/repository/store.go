package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dinein/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicate is returned when a write hits a unique index.
var ErrDuplicate = errors.New("duplicate record")

// Store groups the repositories so a service can run them against one
// connection or one transaction.
type Store struct {
	db *gorm.DB

	Users        *UserRepository
	Tables       *TableRepository
	Customers    *CustomerRepository
	Reservations *ReservationRepository
	Orders       *OrderRepository
	MenuItems    *MenuItemRepository
	Bills        *BillRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Users:        NewUserRepository(db),
		Tables:       NewTableRepository(db),
		Customers:    NewCustomerRepository(db),
		Reservations: NewReservationRepository(db),
		Orders:       NewOrderRepository(db),
		MenuItems:    NewMenuItemRepository(db),
		Bills:        NewBillRepository(db),
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside one database transaction. Only the Store handed
// to fn may be used until it returns.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func forUpdate() clause.Expression {
	return clause.Locking{Strength: "UPDATE"}
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicate) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
