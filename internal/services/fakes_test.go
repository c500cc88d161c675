package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/voyagehub/travel-backend/internal/apperr"
	"github.com/voyagehub/travel-backend/internal/cache"
	"github.com/voyagehub/travel-backend/internal/config"
	"github.com/voyagehub/travel-backend/internal/database"
	"github.com/voyagehub/travel-backend/internal/messaging"
	"github.com/voyagehub/travel-backend/internal/metrics"
	"github.com/voyagehub/travel-backend/internal/models"
	"github.com/voyagehub/travel-backend/internal/validation"
)

// world is an in-memory store shared by the booking and payment fakes.
// WithinTx holds the mutex for the whole transaction, which gives the same
// serialization the FOR UPDATE locks give in postgres, and rolls back on error.
type world struct {
	mu        sync.Mutex
	inventory map[uuid.UUID]models.Inventory
	bookings  map[uuid.UUID]models.Booking
	payments  map[uuid.UUID]models.Payment
	users     map[uuid.UUID]models.User
	audits    []models.PaymentAudit
}

func newWorld() *world {
	return &world{
		inventory: map[uuid.UUID]models.Inventory{},
		bookings:  map[uuid.UUID]models.Booking{},
		payments:  map[uuid.UUID]models.Payment{},
		users:     map[uuid.UUID]models.User{},
	}
}

func (w *world) addTour(maxGuests int, price float64) uuid.UUID {
	id := uuid.New()
	w.inventory[id] = models.Inventory{
		Ref: models.TourRef(id), Name: "Gorilla Trek", UnitPrice: price,
		Capacity: maxGuests, Open: true,
	}
	return id
}

func (w *world) addRoom(price float64) uuid.UUID {
	id := uuid.New()
	w.inventory[id] = models.Inventory{Ref: models.RoomRef(id), Name: "DELUXE", UnitPrice: price, Capacity: 1, Open: true}
	return id
}

func (w *world) addUser(email string, role models.UserRole) Actor {
	id := uuid.New()
	w.users[id] = models.User{ID: id, Email: email, Role: role, IsActive: true}
	return Actor{UserID: id, Email: email, Role: role}
}

func (w *world) used(id uuid.UUID) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inventory[id].Used
}

func (w *world) booking(id uuid.UUID) models.Booking {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bookings[id]
}

func (w *world) payment(id uuid.UUID) models.Payment {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.payments[id]
}

func (w *world) auditEvents() []models.PaymentEventType {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]models.PaymentEventType, 0, len(w.audits))
	for _, a := range w.audits {
		events = append(events, a.EventType)
	}
	return events
}

func (w *world) WithinTx(ctx context.Context, fn func(tx database.TravelTx) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	inventory := make(map[uuid.UUID]models.Inventory, len(w.inventory))
	for k, v := range w.inventory {
		inventory[k] = v
	}
	bookings := make(map[uuid.UUID]models.Booking, len(w.bookings))
	for k, v := range w.bookings {
		bookings[k] = v
	}
	payments := make(map[uuid.UUID]models.Payment, len(w.payments))
	for k, v := range w.payments {
		payments[k] = v
	}

	if err := fn(&worldTx{w: w}); err != nil {
		w.inventory, w.bookings, w.payments = inventory, bookings, payments
		return err
	}
	return nil
}

// worldTx runs with world.mu already held
type worldTx struct {
	w *world
}

func (t *worldTx) LockInventory(_ context.Context, ref models.BookableRef) (*models.Inventory, error) {
	inv, ok := t.w.inventory[ref.ID]
	if !ok || inv.Ref.Type != ref.Type {
		return nil, apperr.NotFound(titleType(ref.Type), ref.ID)
	}
	return &inv, nil
}

func (t *worldTx) AdjustInventory(_ context.Context, ref models.BookableRef, delta int) error {
	inv := t.w.inventory[ref.ID]
	if ref.Type == models.BookingTypeRoom {
		inv.Used = 0
		if delta > 0 {
			inv.Used = 1
		}
	} else {
		inv.Used = max(inv.Used+delta, 0)
	}
	t.w.inventory[ref.ID] = inv
	return nil
}

func (t *worldTx) InsertBooking(_ context.Context, b *models.Booking) error {
	now := time.Now()
	b.BookingDate, b.CreatedAt, b.UpdatedAt = now, now, now
	t.w.bookings[b.ID] = *b
	return nil
}

func (t *worldTx) LockBooking(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	b, ok := t.w.bookings[id]
	if !ok {
		return nil, apperr.NotFound("Booking", id)
	}
	return &b, nil
}

func (t *worldTx) LockBookings(_ context.Context, f models.BookingFilter) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range t.w.bookings {
		if f.Status != "" && string(b.Status) != f.Status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (t *worldTx) UpdateBookingStatus(_ context.Context, b *models.Booking) error {
	if _, ok := t.w.bookings[b.ID]; !ok {
		return apperr.NotFound("Booking", b.ID)
	}
	b.UpdatedAt = time.Now()
	t.w.bookings[b.ID] = *b
	return nil
}

func (t *worldTx) DeleteBooking(_ context.Context, id uuid.UUID) error {
	if _, ok := t.w.bookings[id]; !ok {
		return apperr.NotFound("Booking", id)
	}
	delete(t.w.bookings, id)
	for pid, p := range t.w.payments {
		if p.BookingID == id {
			delete(t.w.payments, pid)
		}
	}
	return nil
}

func (t *worldTx) LockPaymentByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	p, ok := t.w.payments[id]
	if !ok {
		return nil, apperr.NotFound("Payment", id)
	}
	return &p, nil
}

func (t *worldTx) LockPaymentByReference(_ context.Context, reference string) (*models.Payment, error) {
	for _, p := range t.w.payments {
		if p.TransactionReference == reference {
			return &p, nil
		}
	}
	return nil, apperr.NotFound("Payment with reference", reference)
}

func (t *worldTx) UpdatePayment(_ context.Context, p *models.Payment) error {
	if _, ok := t.w.payments[p.ID]; !ok {
		return apperr.NotFound("Payment", p.ID)
	}
	p.UpdatedAt = time.Now()
	t.w.payments[p.ID] = *p
	return nil
}

func (t *worldTx) HasCompletedPayment(_ context.Context, bookingID uuid.UUID) (bool, error) {
	for _, p := range t.w.payments {
		if p.BookingID == bookingID && p.Status == models.PaymentStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

// Non-transactional store methods

type worldBookings struct{ w *world }

func (s worldBookings) GetByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	b, ok := s.w.bookings[id]
	if !ok {
		return nil, apperr.NotFound("Booking", id)
	}
	return &b, nil
}

func (s worldBookings) List(_ context.Context, f models.BookingFilter) ([]models.Booking, int, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var out []models.Booking
	for _, b := range s.w.bookings {
		if f.UserID != "" && b.UserID.String() != f.UserID {
			continue
		}
		out = append(out, b)
	}
	return out, len(out), nil
}

type worldPayments struct{ w *world }

func (s worldPayments) Create(_ context.Context, p *models.Payment) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	for _, existing := range s.w.payments {
		if existing.BookingID == p.BookingID &&
			(existing.Status == models.PaymentStatusPending || existing.Status == models.PaymentStatusCompleted) {
			return apperr.Conflict("booking already has an active payment")
		}
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.w.payments[p.ID] = *p
	return nil
}

func (s worldPayments) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	p, ok := s.w.payments[id]
	if !ok {
		return nil, apperr.NotFound("Payment", id)
	}
	return &p, nil
}

func (s worldPayments) GetByReference(_ context.Context, reference string) (*models.Payment, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	for _, p := range s.w.payments {
		if p.TransactionReference == reference {
			return &p, nil
		}
	}
	return nil, apperr.NotFound("Payment with reference", reference)
}

func (s worldPayments) FindActiveByBooking(_ context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	for _, p := range s.w.payments {
		if p.BookingID == bookingID &&
			(p.Status == models.PaymentStatusPending || p.Status == models.PaymentStatusCompleted) {
			return &p, nil
		}
	}
	return nil, nil
}

func (s worldPayments) List(_ context.Context, f models.PaymentFilter) ([]models.Payment, int, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var out []models.Payment
	for _, p := range s.w.payments {
		if f.UserID != "" && p.UserID.String() != f.UserID {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (s worldPayments) Delete(_ context.Context, id uuid.UUID) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if _, ok := s.w.payments[id]; !ok {
		return apperr.NotFound("Payment", id)
	}
	delete(s.w.payments, id)
	return nil
}

func (s worldPayments) DeleteAll(_ context.Context, _ models.PaymentFilter) (int64, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	n := int64(len(s.w.payments))
	s.w.payments = map[uuid.UUID]models.Payment{}
	return n, nil
}

func (s worldPayments) ListStalePending(_ context.Context, olderThan time.Time, limit int) ([]models.Payment, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	var out []models.Payment
	for _, p := range s.w.payments {
		if p.Status == models.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			out = append(out, p)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type worldAudits struct{ w *world }

func (s worldAudits) Log(_ context.Context, a *models.PaymentAudit) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	s.w.audits = append(s.w.audits, *a)
	return nil
}

type worldUsers struct{ w *world }

func (s worldUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	u, ok := s.w.users[id]
	if !ok {
		return nil, apperr.NotFound("User", id)
	}
	return &u, nil
}

// fakeGateway returns a scripted verdict and counts calls
type fakeGateway struct {
	mu          sync.Mutex
	initErr     error
	verifyErr   error
	refundErr   error
	outcome     models.GatewayOutcome
	amount      *float64
	currency    string
	initCalls   int
	verifyCalls int
	refundCalls int
	amounts     map[string]float64
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{outcome: models.GatewayOutcomeSuccess, currency: "NGN", amounts: map[string]float64{}}
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) Initialize(_ context.Context, req GatewayInitRequest) (*GatewayInitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initCalls++
	if g.initErr != nil {
		return nil, g.initErr
	}
	g.amounts[req.Reference] = req.Amount
	return &GatewayInitResult{
		AuthorizationURL: "https://checkout.example/" + req.Reference,
		AccessCode:       "ac_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *fakeGateway) Verify(_ context.Context, reference string) (*models.GatewayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	amount := g.amounts[reference]
	if g.amount != nil {
		amount = *g.amount
	}
	return &models.GatewayResult{
		Reference:     reference,
		Outcome:       g.outcome,
		GatewayStatus: string(g.outcome),
		Amount:        amount,
		Currency:      g.currency,
	}, nil
}

func (g *fakeGateway) Refund(_ context.Context, _ string, amount float64, _ string) (*GatewayRefundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refundCalls++
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	return &GatewayRefundResult{Status: "processed", Amount: amount}, nil
}

func (g *fakeGateway) VerifySignature(_ []byte, signature string) bool {
	return signature == "good"
}

func (g *fakeGateway) ParseWebhook(body []byte) (string, error) {
	if len(body) == 0 {
		return "", errors.New("empty webhook")
	}
	return string(body), nil
}

func (g *fakeGateway) calls() (initCalls, verifyCalls, refundCalls int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.initCalls, g.verifyCalls, g.refundCalls
}

// capturePublisher records published event types
type capturePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturePublisher) Publish(_ context.Context, e messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e.Type)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// harness wires the booking and payment services over one world
type harness struct {
	world    *world
	gateway  *fakeGateway
	events   *capturePublisher
	bookings *BookingService
	payments *PaymentService
	logger   *logrus.Logger
}

func newHarness() *harness {
	w := newWorld()
	gw := newFakeGateway()
	events := &capturePublisher{}
	logger, _ := test.NewNullLogger()
	v := validation.New()
	m := metrics.New()

	bookings := NewBookingService(w, worldBookings{w}, v, events, m, logger)
	payments := NewPaymentService(PaymentServiceDeps{
		Tx:        w,
		Payments:  worldPayments{w},
		Bookings:  worldBookings{w},
		Users:     worldUsers{w},
		Audits:    worldAudits{w},
		Gateway:   gw,
		Locker:    cache.NewMemoryLocker(),
		Lifecycle: bookings,
		Validator: v,
		Events:    events,
		Metrics:   m,
		Config: config.PaymentConfig{
			Currency:       "NGN",
			RequestTimeout: time.Second,
			LockTTL:        time.Minute,
		},
		Logger: logger,
	})

	return &harness{world: w, gateway: gw, events: events, bookings: bookings, payments: payments, logger: logger}
}

func strPtr(s string) *string { return &s }
