package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"dinein/internal/config"
	"dinein/internal/database"
	"dinein/internal/domain"
	"dinein/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	bookingDay = time.Date(2030, 3, 14, 0, 0, 0, 0, time.UTC)
	morning    = time.Date(2030, 3, 14, 9, 0, 0, 0, time.UTC)
	manager    = domain.Actor{UserID: 1, Role: domain.RoleManager}
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyReservationConfirmed(ctx context.Context, c domain.Customer, r domain.Reservation) error {
	args := m.Called(c.Phone, r.ID)
	return args.Error(0)
}

func (m *mockNotifier) NotifyReservationCancelled(ctx context.Context, c domain.Customer, r domain.Reservation) error {
	args := m.Called(c.Phone, r.ID)
	return args.Error(0)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *eventRecorder) Publish(evt domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *eventRecorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc    *Service
	store  *repository.Store
	events *eventRecorder
	now    time.Time
}

func setupFixture(t *testing.T, cfg config.Engine, notifier Notifier) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:reservation_test_%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn, database.Silent())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	f := &fixture{store: repository.NewStore(db), events: &eventRecorder{}, now: morning}
	f.svc = NewService(f.store, cfg, notifier, f.events, t.Logf).WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) table(t *testing.T, number string, capacity int) *domain.Table {
	t.Helper()
	tb := &domain.Table{Number: number, Capacity: capacity}
	require.NoError(t, f.store.Tables.Create(context.Background(), tb))
	return tb
}

func (f *fixture) waiter(t *testing.T, email string, role domain.UserRole) *domain.User {
	t.Helper()
	u := &domain.User{Name: "Staff", Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, f.store.Users.Create(context.Background(), u))
	return u
}

// insert writes a reservation directly, bypassing the slot rules.
func (f *fixture) insert(t *testing.T, day time.Time, startH, startM, endH, endM int, tableID *int64) *domain.Reservation {
	t.Helper()
	ctx := context.Background()
	c := &domain.Customer{Name: "Guest", Phone: "+15550000"}
	require.NoError(t, f.store.Customers.Create(ctx, c))
	r := &domain.Reservation{
		CustomerID:    c.ID,
		BookingDate:   day,
		TimeSlotStart: day.Add(time.Duration(startH)*time.Hour + time.Duration(startM)*time.Minute),
		TimeSlotEnd:   day.Add(time.Duration(endH)*time.Hour + time.Duration(endM)*time.Minute),
		PartySize:     2,
		Status:        domain.ReservationConfirmed,
		TableID:       tableID,
	}
	require.NoError(t, f.store.Reservations.Create(ctx, r))
	return r
}

func request(start, end string, party int) CreateReservationRequest {
	return CreateReservationRequest{
		Name:          "Ada",
		Phone:         "+15551234",
		BookingDate:   "2030-03-14",
		TimeSlotStart: start,
		TimeSlotEnd:   end,
		PartySize:     party,
	}
}

func TestCreateWithoutDirectAllotment(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("NotifyReservationConfirmed", "+15551234", mock.Anything).Return(nil).Once()
	f := setupFixture(t, config.DefaultEngine(), notifier)
	f.table(t, "T1", 4)

	res, err := f.svc.Create(context.Background(), request("18:00", "19:00", 2))
	require.NoError(t, err)

	assert.Equal(t, domain.ReservationConfirmed, res.Status)
	assert.Nil(t, res.TableID)
	assert.True(t, res.TimeSlotStart.Equal(bookingDay.Add(18*time.Hour)))
	assert.True(t, res.BookingDate.Equal(bookingDay))
	require.NotNil(t, res.Customer)
	assert.Equal(t, "Ada", res.Customer.Name)
	assert.Equal(t, []domain.EventType{domain.EventReservationCreated}, f.events.types())
	notifier.AssertExpectations(t)
}

func TestCreateIgnoresNotifierFailure(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("NotifyReservationConfirmed", mock.Anything, mock.Anything).Return(errors.New("sms down"))
	f := setupFixture(t, config.DefaultEngine(), notifier)

	_, err := f.svc.Create(context.Background(), request("18:00", "19:00", 2))
	assert.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	f := setupFixture(t, config.DefaultEngine(), nil)

	cases := map[string]CreateReservationRequest{
		"zero party":      request("18:00", "19:00", 0),
		"end before":      request("19:00", "18:00", 2),
		"outside hours":   request("22:00", "23:00", 2),
		"too short":       request("18:00", "18:30", 2),
		"too long":        request("18:00", "20:30", 2),
		"bad clock":       request("six", "19:00", 2),
		"missing name":    withName(request("18:00", "19:00", 2), ""),
		"bad date":        onDate(request("18:00", "19:00", 2), "14/03/2030"),
		"already started": onDate(request("18:00", "19:00", 2), "2030-03-13"),
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func withName(r CreateReservationRequest, name string) CreateReservationRequest {
	r.Name = name
	return r
}

func onDate(r CreateReservationRequest, date string) CreateReservationRequest {
	r.BookingDate = date
	return r
}

func TestFreeTablesRejectsSlotOutsideRules(t *testing.T) {
	f := setupFixture(t, config.DefaultEngine(), nil)
	f.table(t, "T1", 4)
	ctx := context.Background()

	cases := map[string]FreeTablesQuery{
		"end before":    {Date: "2030-03-14", TimeSlotStart: "19:00", TimeSlotEnd: "18:00", PartySize: 2},
		"outside hours": {Date: "2030-03-14", TimeSlotStart: "22:00", TimeSlotEnd: "23:00", PartySize: 2},
		"too long":      {Date: "2030-03-14", TimeSlotStart: "12:00", TimeSlotEnd: "15:00", PartySize: 2},
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.FreeTables(ctx, q)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	free, err := f.svc.FreeTables(ctx, FreeTablesQuery{Date: "2030-03-13", TimeSlotStart: "12:00", TimeSlotEnd: "13:00", PartySize: 2})
	require.NoError(t, err)
	assert.Len(t, free, 1)
}

func TestCreateAcceptsTimestamps(t *testing.T) {
	f := setupFixture(t, config.DefaultEngine(), nil)

	res, err := f.svc.Create(context.Background(), request("2030-03-14T12:00:00Z", "2030-03-14T13:30:00Z", 3))
	require.NoError(t, err)
	assert.True(t, res.TimeSlotEnd.Equal(bookingDay.Add(13*time.Hour+30*time.Minute)))
}

func TestCreateDirectAllotmentPicksSmallestTable(t *testing.T) {
	cfg := config.DefaultEngine()
	cfg.AllotTableDirectly = true
	f := setupFixture(t, cfg, nil)
	big := f.table(t, "T1", 6)
	small := f.table(t, "T2", 2)
	mid := f.table(t, "T3", 4)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, request("18:00", "19:00", 2))
	require.NoError(t, err)
	require.NotNil(t, first.TableID)
	assert.Equal(t, small.ID, *first.TableID)

	second, err := f.svc.Create(ctx, request("18:30", "19:30", 2))
	require.NoError(t, err)
	assert.Equal(t, mid.ID, *second.TableID)

	third, err := f.svc.Create(ctx, request("17:30", "19:30", 5))
	require.NoError(t, err)
	assert.Equal(t, big.ID, *third.TableID)

	_, err = f.svc.Create(ctx, request("18:00", "19:00", 1))
	assert.ErrorIs(t, err, domain.ErrNoTableAvailable)

	all, err := f.svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAllotTable(t *testing.T) {
	f := setupFixture(t, config.DefaultEngine(), nil)
	ctx := context.Background()
	table := f.table(t, "T1", 4)
	waiter := f.waiter(t, "w@dine.in", domain.RoleWaiter)

	res, err := f.svc.Create(ctx, request("18:00", "19:00", 2))
	require.NoError(t, err)

	got, err := f.svc.AllotTable(ctx, manager, res.ID, AllotTableRequest{TableID: table.ID, WaiterID: waiter.ID})
	require.NoError(t, err)
	require.NotNil(t, got.TableID)
	assert.Equal(t, table.ID, *got.TableID)
	require.NotNil(t, got.Waiter)
	assert.Equal(t, waiter.ID, got.Waiter.ID)
	assert.Contains(t, f.events.types(), domain.EventReservationAllotted)

	// re-allotting the same reservation does not collide with itself
	_, err = f.svc.AllotTable(ctx, manager, res.ID, AllotTableRequest{TableID: table.ID, WaiterID: waiter.ID})
	assert.NoError(t, err)

	other, err := f.svc.Create(ctx, request("18:30", "19:30", 2))
	require.NoError(t, err)
	_, err = f.svc.AllotTable(ctx, manager, other.ID, AllotTableRequest{TableID: table.ID, WaiterID: waiter.ID})
	assert.ErrorIs(t, err, domain.ErrNoTableAvailable)
}

func TestAllotTableFailures(t *testing.T) {
	f := setupFixture(t, config.DefaultEngine(), nil)
	ctx := context.Background()
	table := f.table(t, "T1", 2)
	waiter := f.waiter(t, "w@dine.in", domain.RoleWaiter)
	boss := f.waiter(t, "m@dine.in", domain.RoleManager)

	res, err := f.svc.Create(ctx, request("18:00", "19:00", 2))
	require.NoError(t, err)
	crowd, err := f.svc.Create(ctx, request("12:00", "13:00", 3))
	require.NoError(t, err)

	_, err = f.svc.AllotTable(ctx, domain.Actor{}, res.ID, AllotTableRequest{TableID: table.ID, WaiterID: waiter.ID})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.AllotTable(ctx, manager, 999, AllotTableRequest{TableID: table.ID, WaiterID: waiter.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.AllotTable(ctx, manager, res.ID, AllotTableRequest{TableID: 999, WaiterID: waiter.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.AllotTable(ctx, manager, res.ID, AllotTableRequest{TableID: table.ID, WaiterID: boss.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.AllotTable(ctx, manager, crowd.ID, AllotTableRequest{TableID: table.ID, WaiterID: waiter.ID})
	assert.ErrorIs(t, err, domain.ErrNoTableAvailable)

	_, err = f.svc.Cancel(ctx, manager, res.ID)
	require.NoError(t, err)
	_, err = f.svc.AllotTable(ctx, manager, res.ID, AllotTableRequest{TableID: table.ID, WaiterID: waiter.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancelReleasesTable(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("NotifyReservationConfirmed", mock.Anything, mock.Anything).Return(nil)
	notifier.On("NotifyReservationCancelled", "+15551234", mock.Anything).Return(nil).Once()
	f := setupFixture(t, config.DefaultEngine(), notifier)
	ctx := context.Background()
	table := f.table(t, "T1", 4)
	waiter := f.waiter(t, "w@dine.in", domain.RoleWaiter)

	res, err := f.svc.Create(ctx, request("18:00", "19:00", 2))
	require.NoError(t, err)
	_, err = f.svc.AllotTable(ctx, manager, res.ID, AllotTableRequest{TableID: table.ID, WaiterID: waiter.ID})
	require.NoError(t, err)

	q := FreeTablesQuery{Date: "2030-03-14", TimeSlotStart: "18:00", TimeSlotEnd: "19:00", PartySize: 2}
	free, err := f.svc.FreeTables(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, free)

	cancelled, err := f.svc.Cancel(ctx, manager, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, cancelled.Status)
	assert.Nil(t, cancelled.TableID)
	assert.Nil(t, cancelled.WaiterID)
	assert.NotNil(t, cancelled.CancelledAt)

	free, err = f.svc.FreeTables(ctx, q)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, table.ID, free[0].ID)

	again, err := f.svc.Cancel(ctx, manager, res.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, again.Status)
	notifier.AssertExpectations(t)
}

func TestCancelFailures(t *testing.T) {
	f := setupFixture(t, config.DefaultEngine(), nil)
	ctx := context.Background()

	_, err := f.svc.Cancel(ctx, manager, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	done := f.insert(t, bookingDay, 12, 0, 13, 0, nil)
	require.NoError(t, f.store.Reservations.SetStatus(ctx, done.ID, domain.ReservationCompleted))
	_, err = f.svc.Cancel(ctx, manager, done.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.Cancel(ctx, domain.Actor{UserID: 3}, done.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestExpireStale(t *testing.T) {
	f := setupFixture(t, config.DefaultEngine(), nil)
	ctx := context.Background()
	table := f.table(t, "T1", 4)
	f.now = bookingDay.Add(20 * time.Hour)

	yesterday := f.insert(t, bookingDay.AddDate(0, 0, -1), 20, 0, 21, 0, nil)
	endedLongAgo := f.insert(t, bookingDay, 18, 0, 19, 30, nil)
	withinBuffer := f.insert(t, bookingDay, 18, 0, 19, 50, nil)
	seated := f.insert(t, bookingDay, 12, 0, 13, 0, &table.ID)
	tomorrow := f.insert(t, bookingDay.AddDate(0, 0, 1), 12, 0, 13, 0, nil)
	billed := f.insert(t, bookingDay.AddDate(0, 0, -2), 12, 0, 13, 0, nil)

	order := &domain.Order{ReservationID: billed.ID}
	require.NoError(t, f.store.Orders.Create(ctx, order))
	require.NoError(t, f.store.Bills.Create(ctx, &domain.Bill{
		ReservationID: billed.ID, OrderID: order.ID, Amount: 10, NetAmount: 10, SplitInto: 1,
		PaymentMethod: domain.PaymentCreditCard, PaymentStatus: domain.PaymentPending,
	}))

	result, err := f.svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Scanned)
	assert.Equal(t, 2, result.Expired)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)

	status := func(id int64) domain.ReservationStatus {
		r, err := f.store.Reservations.GetByID(ctx, id)
		require.NoError(t, err)
		return r.Status
	}
	assert.Equal(t, domain.ReservationCancelled, status(yesterday.ID))
	assert.Equal(t, domain.ReservationCancelled, status(endedLongAgo.ID))
	assert.Equal(t, domain.ReservationConfirmed, status(withinBuffer.ID))
	assert.Equal(t, domain.ReservationConfirmed, status(seated.ID))
	assert.Equal(t, domain.ReservationConfirmed, status(tomorrow.ID))
	assert.Equal(t, domain.ReservationConfirmed, status(billed.ID))

	second, err := f.svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Expired)
}

func TestListOrderingAndFilters(t *testing.T) {
	f := setupFixture(t, config.DefaultEngine(), nil)
	ctx := context.Background()

	later := f.insert(t, bookingDay.AddDate(0, 0, 1), 12, 0, 13, 0, nil)
	today := f.insert(t, bookingDay, 12, 0, 13, 0, nil)
	cancelled := f.insert(t, bookingDay, 14, 0, 15, 0, nil)
	_, err := f.svc.Cancel(ctx, manager, cancelled.ID)
	require.NoError(t, err)

	all, err := f.svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	ids := make([]int64, 0, len(all))
	for _, r := range all {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{today.ID, later.ID, cancelled.ID}, ids)

	onDay, err := f.svc.List(ctx, ListFilter{Date: "2030-03-14", Status: "confirmed"})
	require.NoError(t, err)
	require.Len(t, onDay, 1)
	assert.Equal(t, today.ID, onDay[0].ID)
	assert.NotNil(t, onDay[0].Customer)

	_, err = f.svc.List(ctx, ListFilter{Status: "SEATED"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFreeTablesFor(t *testing.T) {
	f := setupFixture(t, config.DefaultEngine(), nil)
	ctx := context.Background()
	small := f.table(t, "T1", 2)
	large := f.table(t, "T2", 8)
	f.insert(t, bookingDay, 18, 0, 19, 0, &large.ID)

	mine := f.insert(t, bookingDay, 18, 30, 19, 30, &small.ID)

	free, err := f.svc.FreeTablesFor(ctx, mine.ID)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, small.ID, free[0].ID)

	_, err = f.svc.FreeTablesFor(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetNotFound(t *testing.T) {
	f := setupFixture(t, config.DefaultEngine(), nil)
	_, err := f.svc.Get(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSweeper(t *testing.T) {
	f := setupFixture(t, config.DefaultEngine(), nil)
	f.now = bookingDay.Add(20 * time.Hour)
	stale := f.insert(t, bookingDay.AddDate(0, 0, -1), 12, 0, 13, 0, nil)

	_, err := NewSweeper(f.svc, "not a schedule", nil)
	assert.Error(t, err)

	sw, err := NewSweeper(f.svc, "*/5 * * * *", t.Logf)
	require.NoError(t, err)

	result, err := sw.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)

	r, err := f.store.Reservations.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, r.Status)

	sw.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sw.Stop(ctx)
}
