package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"dinein/internal/database"
	"dinein/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:repository_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn, database.Silent())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return NewStore(db)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedReservation(t *testing.T, s *Store, bookingDay time.Time, status domain.ReservationStatus, tableID *int64) *domain.Reservation {
	t.Helper()
	ctx := context.Background()
	c := &domain.Customer{Name: "Ann", Phone: "+100"}
	require.NoError(t, s.Customers.Create(ctx, c))
	r := &domain.Reservation{
		CustomerID:    c.ID,
		BookingDate:   bookingDay,
		TimeSlotStart: bookingDay.Add(12 * time.Hour),
		TimeSlotEnd:   bookingDay.Add(13 * time.Hour),
		PartySize:     2,
		Status:        status,
		TableID:       tableID,
	}
	require.NoError(t, s.Reservations.Create(ctx, r))
	return r
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: tables.number")))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestTranslate(t *testing.T) {
	assert.Nil(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), domain.ErrNotFound)
	assert.ErrorIs(t, translate(errors.New("UNIQUE constraint failed: bills.reservation_id")), ErrDuplicate)
}

func TestGetByIDNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Reservations.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Tables.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDuplicateTableNumber(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Tables.Create(ctx, &domain.Table{Number: "T1", Capacity: 2}))
	err := s.Tables.Create(ctx, &domain.Table{Number: "T1", Capacity: 4})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestListWithConfirmedOnFiltersByDayAndStatus(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	table := &domain.Table{Number: "T1", Capacity: 4}
	require.NoError(t, s.Tables.Create(ctx, table))

	d := day(2030, 5, 10)
	seedReservation(t, s, d, domain.ReservationConfirmed, &table.ID)
	seedReservation(t, s, d, domain.ReservationCancelled, &table.ID)
	seedReservation(t, s, d.AddDate(0, 0, 1), domain.ReservationConfirmed, &table.ID)

	tables, err := s.Tables.ListWithConfirmedOn(ctx, d, d.AddDate(0, 0, 1), true)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Len(t, tables[0].Reservations, 1)
}

func TestListExpiryCandidates(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	table := &domain.Table{Number: "T1", Capacity: 4}
	require.NoError(t, s.Tables.Create(ctx, table))

	today := day(2030, 5, 10)
	yesterday := seedReservation(t, s, today.AddDate(0, 0, -1), domain.ReservationConfirmed, nil)
	todays := seedReservation(t, s, today, domain.ReservationConfirmed, nil)
	seedReservation(t, s, today, domain.ReservationConfirmed, &table.ID)
	seedReservation(t, s, today.AddDate(0, 0, 1), domain.ReservationConfirmed, nil)
	billed := seedReservation(t, s, today, domain.ReservationConfirmed, nil)

	order := &domain.Order{ReservationID: billed.ID}
	require.NoError(t, s.Orders.Create(ctx, order))
	require.NoError(t, s.Bills.Create(ctx, &domain.Bill{
		ReservationID: billed.ID, OrderID: order.ID, Amount: 10, NetAmount: 10,
		PaymentMethod: domain.PaymentCreditCard, PaymentStatus: domain.PaymentPending, SplitInto: 1,
	}))

	got, err := s.Reservations.ListExpiryCandidates(ctx, today.AddDate(0, 0, 1))
	require.NoError(t, err)

	ids := make([]int64, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{yesterday.ID, todays.ID}, ids)
}

func TestTransactionRollsBack(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx *Store) error {
		if err := tx.Tables.Create(ctx, &domain.Table{Number: "T9", Capacity: 2}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	tables, err := s.Tables.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestBillUniquePerReservation(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	r := seedReservation(t, s, day(2030, 5, 10), domain.ReservationConfirmed, nil)
	order := &domain.Order{ReservationID: r.ID}
	require.NoError(t, s.Orders.Create(ctx, order))

	bill := func() *domain.Bill {
		return &domain.Bill{ReservationID: r.ID, OrderID: order.ID, Amount: 5, NetAmount: 5,
			PaymentMethod: domain.PaymentCreditCard, PaymentStatus: domain.PaymentPending, SplitInto: 1}
	}
	require.NoError(t, s.Bills.Create(ctx, bill()))
	assert.ErrorIs(t, s.Bills.Create(ctx, bill()), ErrDuplicate)

	exists, err := s.Bills.ExistsForReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCancelKeepsOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	table := &domain.Table{Number: "T1", Capacity: 4}
	require.NoError(t, s.Tables.Create(ctx, table))
	r := seedReservation(t, s, day(2030, 5, 10), domain.ReservationConfirmed, &table.ID)
	require.NoError(t, s.Orders.Create(ctx, &domain.Order{ReservationID: r.ID}))

	require.NoError(t, s.Reservations.Cancel(ctx, r.ID, time.Date(2030, 5, 10, 9, 0, 0, 0, time.UTC)))

	got, err := s.Reservations.GetDetailed(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, got.Status)
	assert.Nil(t, got.TableID)
	assert.NotNil(t, got.CancelledAt)
	assert.NotNil(t, got.Order)
}
