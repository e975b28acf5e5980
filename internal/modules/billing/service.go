package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dinein/internal/config"
	"dinein/internal/domain"
	"dinein/internal/pkg/validator"
	"dinein/internal/repository"
)

var (
	ErrBillExists = fmt.Errorf("bill already exists: %w", domain.ErrInvalidTransition)
	ErrEmptyOrder = fmt.Errorf("order has no items: %w", domain.ErrMissingPrecondition)
)

type Service struct {
	store   *repository.Store
	cfg     config.Engine
	events  EventPublisher
	loggerf func(format string, args ...interface{})
	now     func() time.Time
}

func NewService(store *repository.Store, cfg config.Engine, events EventPublisher, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		store:   store,
		cfg:     cfg,
		events:  events,
		loggerf: loggerf,
		now:     time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AddItem appends a new line to the reservation's order, creating the order
// on first use. Repeated adds of one menu item give separate lines.
func (s *Service) AddItem(ctx context.Context, actor domain.Actor, reservationID int64, req ItemRequest) (*OrderView, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	if req.Quantity < 1 {
		return nil, domain.NewValidationError("quantity", "must be at least 1")
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := lockEditable(ctx, tx, reservationID); err != nil {
			return err
		}

		item, err := tx.MenuItems.GetByID(ctx, req.MenuItemID)
		if err != nil {
			return fmt.Errorf("menu item %d: %w", req.MenuItemID, err)
		}

		order, err := tx.Orders.GetByReservation(ctx, reservationID)
		if errors.Is(err, domain.ErrNotFound) {
			order = &domain.Order{ReservationID: reservationID}
			err = tx.Orders.Create(ctx, order)
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}

		return tx.Orders.AddItem(ctx, &domain.OrderItem{
			OrderID:    order.ID,
			MenuItemID: item.ID,
			Quantity:   req.Quantity,
			Amount:     domain.Round2(item.Price * float64(req.Quantity)),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(domain.EventOrderUpdated, reservationID, domain.ReservationConfirmed)
	return s.GetOrder(ctx, reservationID)
}

// UpdateItem changes the quantity of the first line holding the menu item.
// Zero removes the line; any other edit re-prices it at the current menu
// price and clears the sent-to-kitchen flag.
func (s *Service) UpdateItem(ctx context.Context, actor domain.Actor, reservationID int64, req ItemRequest) (*OrderView, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := lockEditable(ctx, tx, reservationID); err != nil {
			return err
		}

		order, err := tx.Orders.GetByReservation(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("order for reservation %d: %w", reservationID, err)
		}

		var line *domain.OrderItem
		for i := range order.Items {
			if order.Items[i].MenuItemID == req.MenuItemID {
				line = &order.Items[i]
				break
			}
		}
		if line == nil {
			return fmt.Errorf("order line for menu item %d: %w", req.MenuItemID, domain.ErrNotFound)
		}

		if req.Quantity == 0 {
			return tx.Orders.DeleteItem(ctx, line.ID)
		}

		item, err := tx.MenuItems.GetByID(ctx, req.MenuItemID)
		if err != nil {
			return fmt.Errorf("menu item %d: %w", req.MenuItemID, err)
		}
		line.Quantity = req.Quantity
		line.Amount = domain.Round2(item.Price * float64(req.Quantity))
		line.SentToKitchen = false
		return tx.Orders.UpdateItem(ctx, line)
	})
	if err != nil {
		return nil, err
	}

	s.publish(domain.EventOrderUpdated, reservationID, domain.ReservationConfirmed)
	return s.GetOrder(ctx, reservationID)
}

// SendToKitchen marks every current line as sent.
func (s *Service) SendToKitchen(ctx context.Context, actor domain.Actor, reservationID int64) (*OrderView, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}

	var sent int64
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := lockEditable(ctx, tx, reservationID); err != nil {
			return err
		}

		order, err := tx.Orders.GetByReservation(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("order for reservation %d: %w", reservationID, err)
		}
		sent, err = tx.Orders.MarkAllSent(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=order sent to kitchen reservation_id=%d lines=%d actor_id=%d", reservationID, sent, actor.UserID)
	s.publish(domain.EventOrderSentToKitchen, reservationID, domain.ReservationConfirmed)
	return s.GetOrder(ctx, reservationID)
}

// GenerateBill snapshots the order into a bill and moves the reservation to
// PENDING_PAYMENT. A reservation gets at most one bill.
func (s *Service) GenerateBill(ctx context.Context, actor domain.Actor, reservationID int64, req GenerateBillRequest) (*BillView, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	split := req.SplitInto
	if split == 0 {
		split = 1
	}

	var bill *domain.Bill
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		res, err := tx.Reservations.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("reservation %d: %w", reservationID, err)
		}

		exists, err := tx.Bills.ExistsForReservation(ctx, res.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrBillExists
		}
		if res.Status != domain.ReservationConfirmed {
			return fmt.Errorf("bill %s reservation: %w", res.Status, domain.ErrInvalidTransition)
		}

		order, err := tx.Orders.GetByReservation(ctx, res.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return ErrEmptyOrder
		}
		if err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return ErrEmptyOrder
		}

		bill = s.computeBill(order, req.Tip, split)
		if err := tx.Bills.Create(ctx, bill); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrBillExists
			}
			return fmt.Errorf("create bill: %w", err)
		}
		return tx.Reservations.SetStatus(ctx, res.ID, domain.ReservationPendingPayment)
	})
	if err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=bill generated reservation_id=%d bill_id=%d amount=%.2f tax=%.4f tip=%.2f net=%.2f split=%d",
		reservationID, bill.ID, bill.Amount, bill.Tax, bill.Tip, bill.NetAmount, bill.SplitInto)
	s.publish(domain.EventBillGenerated, reservationID, domain.ReservationPendingPayment)
	return newBillView(bill), nil
}

func (s *Service) computeBill(order *domain.Order, tip float64, split int) *domain.Bill {
	amount := order.Subtotal()
	tax := amount * s.cfg.TaxPercent / 100
	tip = domain.Round2(tip)

	return &domain.Bill{
		ReservationID: order.ReservationID,
		OrderID:       order.ID,
		Amount:        amount,
		Tax:           tax,
		Tip:           tip,
		SplitInto:     split,
		NetAmount:     domain.Round2(amount + tax + tip),
		AmountPaid:    0,
		PaymentMethod: domain.PaymentCreditCard,
		PaymentStatus: domain.PaymentPending,
	}
}

// RecordPayment adds a payment to the bill. Reaching the net amount caps
// AmountPaid at net, marks the bill PAID and completes the reservation.
func (s *Service) RecordPayment(ctx context.Context, actor domain.Actor, reservationID int64, req PaymentRequest) (*BillView, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	var bill *domain.Bill
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		res, err := tx.Reservations.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("reservation %d: %w", reservationID, err)
		}
		if res.Status == domain.ReservationCancelled {
			return fmt.Errorf("pay cancelled reservation: %w", domain.ErrInvalidTransition)
		}

		bill, err = tx.Bills.GetByReservationForUpdate(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("bill for reservation %d: %w", reservationID, err)
		}
		if bill.PaymentStatus == domain.PaymentPaid {
			return fmt.Errorf("bill %d already paid: %w", bill.ID, domain.ErrInvalidTransition)
		}

		bill.PaymentMethod = req.Method
		paid := domain.Round2(bill.AmountPaid + req.Amount)
		if paid < bill.NetAmount {
			bill.AmountPaid = paid
			return tx.Bills.ApplyPayment(ctx, bill)
		}

		paidAt := s.now().UTC()
		bill.AmountPaid = bill.NetAmount
		bill.PaymentStatus = domain.PaymentPaid
		bill.PaidAt = &paidAt
		if err := tx.Bills.ApplyPayment(ctx, bill); err != nil {
			return err
		}
		return tx.Reservations.SetStatus(ctx, res.ID, domain.ReservationCompleted)
	})
	if err != nil {
		return nil, err
	}

	s.loggerf("level=info msg=payment recorded reservation_id=%d bill_id=%d amount=%.2f paid=%.2f net=%.2f status=%s",
		reservationID, bill.ID, req.Amount, bill.AmountPaid, bill.NetAmount, bill.PaymentStatus)
	if bill.PaymentStatus == domain.PaymentPaid {
		s.publish(domain.EventBillPaid, reservationID, domain.ReservationCompleted)
	}
	return newBillView(bill), nil
}

func (s *Service) GetBill(ctx context.Context, reservationID int64) (*BillView, error) {
	bill, err := s.store.Bills.GetByReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("bill for reservation %d: %w", reservationID, err)
	}
	return newBillView(bill), nil
}

func (s *Service) GetOrder(ctx context.Context, reservationID int64) (*OrderView, error) {
	order, err := s.store.Orders.GetByReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("order for reservation %d: %w", reservationID, err)
	}
	return &OrderView{Order: order, Subtotal: order.Subtotal()}, nil
}

// lockEditable loads the reservation for update and checks that its order
// may still change.
func lockEditable(ctx context.Context, tx *repository.Store, reservationID int64) (*domain.Reservation, error) {
	res, err := tx.Reservations.GetByIDForUpdate(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("reservation %d: %w", reservationID, err)
	}
	if res.Status != domain.ReservationConfirmed {
		return nil, fmt.Errorf("edit order of %s reservation: %w", res.Status, domain.ErrInvalidTransition)
	}
	billed, err := tx.Bills.ExistsForReservation(ctx, res.ID)
	if err != nil {
		return nil, err
	}
	if billed {
		return nil, fmt.Errorf("edit order after billing: %w", domain.ErrInvalidTransition)
	}
	return res, nil
}

func (s *Service) publish(t domain.EventType, reservationID int64, status domain.ReservationStatus) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.Event{Type: t, ReservationID: reservationID, Status: status})
}
