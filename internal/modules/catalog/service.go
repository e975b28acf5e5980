package catalog

import (
	"context"
	"errors"
	"fmt"

	"dinein/internal/domain"
	"dinein/internal/pkg/validator"
	"dinein/internal/repository"

	"github.com/jinzhu/copier"
	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordRequired = fmt.Errorf("password is required for a new waiter: %w", domain.ErrMissingPrecondition)

type Service struct {
	tables  *repository.TableRepository
	menu    *repository.MenuItemRepository
	users   *repository.UserRepository
	loggerf func(format string, args ...interface{})
}

func NewService(store *repository.Store, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		tables:  store.Tables,
		menu:    store.MenuItems,
		users:   store.Users,
		loggerf: loggerf,
	}
}

/* ---------- TABLES ---------- */

// UpsertTable creates a table when id is nil and replaces it otherwise.
func (s *Service) UpsertTable(ctx context.Context, actor domain.Actor, id *int64, req TableRequest) (*domain.Table, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	table := &domain.Table{}
	if id != nil {
		existing, err := s.tables.GetByID(ctx, *id)
		if err != nil {
			return nil, fmt.Errorf("table %d: %w", *id, err)
		}
		table = existing
	}
	if err := copier.Copy(table, &req); err != nil {
		return nil, fmt.Errorf("copy table request: %w", err)
	}
	if err := validator.Struct(table); err != nil {
		return nil, err
	}

	var err error
	if id == nil {
		err = s.tables.Create(ctx, table)
	} else {
		err = s.tables.Update(ctx, table)
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, domain.NewValidationError("number", "is already taken")
	}
	if err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=table saved table_id=%d number=%s capacity=%d actor_id=%d", table.ID, table.Number, table.Capacity, actor.UserID)
	return table, nil
}

func (s *Service) ListTables(ctx context.Context) ([]domain.Table, error) {
	return s.tables.List(ctx)
}

/* ---------- MENU ---------- */

func (s *Service) UpsertMenuItem(ctx context.Context, actor domain.Actor, id *int64, req MenuItemRequest) (*domain.MenuItem, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	item := &domain.MenuItem{}
	if id != nil {
		existing, err := s.menu.GetByID(ctx, *id)
		if err != nil {
			return nil, fmt.Errorf("menu item %d: %w", *id, err)
		}
		item = existing
	}
	if err := copier.Copy(item, &req); err != nil {
		return nil, fmt.Errorf("copy menu item request: %w", err)
	}
	item.Categories = []string(req.Categories)
	item.Price = domain.Round2(item.Price)
	if err := validator.Struct(item); err != nil {
		return nil, err
	}

	var err error
	if id == nil {
		err = s.menu.Create(ctx, item)
	} else {
		err = s.menu.Update(ctx, item)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) ListMenuItems(ctx context.Context) ([]domain.MenuItem, error) {
	return s.menu.List(ctx)
}

/* ---------- WAITERS ---------- */

func (s *Service) UpsertWaiter(ctx context.Context, actor domain.Actor, id *int64, req WaiterRequest) (*domain.User, error) {
	if !actor.IsManager() {
		return nil, domain.ErrForbidden
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if id == nil && req.Password == "" {
		return nil, ErrPasswordRequired
	}

	user := &domain.User{Role: domain.RoleWaiter}
	if id != nil {
		existing, err := s.users.GetByID(ctx, *id)
		if err != nil {
			return nil, fmt.Errorf("waiter %d: %w", *id, err)
		}
		if existing.Role != domain.RoleWaiter {
			return nil, fmt.Errorf("waiter %d: %w", *id, domain.ErrNotFound)
		}
		user = existing
	}

	user.Name = req.Name
	user.Email = req.Email
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	var err error
	if id == nil {
		err = s.users.Create(ctx, user)
	} else {
		err = s.users.Update(ctx, user)
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, domain.NewValidationError("email", "is already registered")
	}
	if err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=waiter saved user_id=%d actor_id=%d", user.ID, actor.UserID)
	return user, nil
}

func (s *Service) ListWaiters(ctx context.Context) ([]domain.User, error) {
	return s.users.ListByRole(ctx, domain.RoleWaiter)
}
