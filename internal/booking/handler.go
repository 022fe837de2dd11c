package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"resort-facilities-backend/internal/identity"
	"resort-facilities-backend/internal/metrics"
	"resort-facilities-backend/internal/parse"
	"resort-facilities-backend/internal/slot"
	"resort-facilities-backend/internal/store"
)

// Cutoff is the lookahead from now inside which slots can be neither
// booked nor cancelled.
const Cutoff = 2 * time.Hour

// Action is the store mutation a click resolved to.
type Action string

const (
	ActionCreate Action = "create"
	ActionDelete Action = "delete"
	ActionNone   Action = "none"
)

// Store is the part of the booking store the handler needs.
type Store interface {
	FetchBookings(ctx context.Context, f slot.Facility) ([]slot.Booking, error)
	CreateBooking(ctx context.Context, b slot.Booking) (string, error)
	DeleteBooking(ctx context.Context, id, uid string) error
}

// Notifier delivers a notice to a user outside the request, e.g. web push.
type Notifier interface {
	Notify(uid string, n Notice)
}

// Publisher is told when a facility's bookings may have changed.
type Publisher interface {
	Publish(f slot.Facility)
}

// Result is the outcome of one click. Err is nil on success and on the
// no-op path; Notice is always set.
type Result struct {
	Action    Action `json:"action"`
	BookingID string `json:"bookingId,omitempty"`
	// Refetch asks the caller to reload the booking list before rendering.
	Refetch bool   `json:"refetch"`
	Notice  Notice `json:"notice"`
	Err     error  `json:"-"`
}

// SlotView is a reconciled slot annotated for display.
type SlotView struct {
	slot.Slot
	// Locked slots start inside the cutoff window and accept no clicks.
	Locked  bool `json:"locked"`
	Pending bool `json:"pending"`
}

// Handler turns slot clicks into at most one store mutation each.
type Handler struct {
	store     Store
	grid      slot.Grid
	pending   *Pending
	now       func() time.Time
	notifier  Notifier
	publisher Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(h *Handler) { h.notifier = n }
}

func WithPublisher(p Publisher) Option {
	return func(h *Handler) { h.publisher = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) { h.log = l }
}

// NewHandler creates a command handler over s.
func NewHandler(s Store, grid slot.Grid, pending *Pending, opts ...Option) *Handler {
	h := &Handler{
		store:   s,
		grid:    grid,
		pending: pending,
		now:     time.Now,
		log:     zap.L(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Now returns the handler's current time.
func (h *Handler) Now() time.Time {
	return h.now()
}

// Grid returns the grid slots are generated on.
func (h *Handler) Grid() slot.Grid {
	return h.grid
}

// Resolve rebuilds the slot a client-supplied id refers to. The returned
// slot carries the canonical id.
func (h *Handler) Resolve(f slot.Facility, slotID string) (slot.Slot, error) {
	p, err := parse.ParseSlotID(slotID)
	if err != nil {
		return slot.Slot{}, fmt.Errorf("%w: %v", slot.ErrInvalidSlot, err)
	}
	s, err := h.grid.At(f, p.Year, p.Month, p.Day, p.Hour, slot.ResourceType(p.Resource))
	if err != nil {
		return slot.Slot{}, err
	}
	return s, nil
}

// Locked reports whether s starts inside the cutoff window at now.
func Locked(s slot.Slot, now time.Time) bool {
	return s.Start.Before(now.Add(Cutoff))
}

// HandleSlotClick applies the click rules to the slot slotID of facility f
// on behalf of who. The cutoff is checked first, against a fresh clock
// read; then the slot's current state decides between one create, one
// delete, or nothing.
func (h *Handler) HandleSlotClick(ctx context.Context, f slot.Facility, slotID string, who identity.Identity) Result {
	res := h.handleSlotClick(ctx, f, slotID, who)
	h.metrics.ObserveClick(string(f), string(res.Action), Kind(res.Err))

	fields := []zap.Field{
		zap.String("facility", string(f)),
		zap.String("slot_id", slotID),
		zap.String("uid", who.UID),
		zap.String("action", string(res.Action)),
	}
	switch Kind(res.Err) {
	case "ok":
		h.log.Info("slot click handled", fields...)
	case "unavailable":
		h.log.Error("slot click failed", append(fields, zap.Error(res.Err))...)
	default:
		h.log.Info("slot click rejected", append(fields, zap.Error(res.Err))...)
	}
	return res
}

func (h *Handler) handleSlotClick(ctx context.Context, f slot.Facility, slotID string, who identity.Identity) Result {
	if who.UID == "" {
		return failed(ActionNone, fmt.Errorf("%w: sign in to book a slot", store.ErrAuthorization))
	}

	s, err := h.Resolve(f, slotID)
	if err != nil {
		return failed(ActionNone, err)
	}

	if now := h.now(); Locked(s, now) {
		return failed(ActionNone, fmt.Errorf("%w: %s starts before %s", ErrCutoffViolation,
			s.ID, now.Add(Cutoff).Format(time.RFC3339)))
	}

	key := PendingKey(f, s.ID)
	if !h.pending.Acquire(key) {
		return failed(ActionNone, fmt.Errorf("%w: %s", ErrPending, s.ID))
	}
	defer h.pending.Release(key)

	bookings, err := h.store.FetchBookings(ctx, f)
	if err != nil {
		return failed(ActionNone, err)
	}

	current := slot.Reconcile([]slot.Slot{s}, bookings, who.UID)[0]
	switch {
	case current.Status == slot.StatusAvailable:
		return h.create(ctx, s, who)
	case current.Ownership == slot.OwnershipMine:
		return h.cancel(ctx, s, current.BookingID, who)
	}
	return Result{Action: ActionNone, Notice: takenNotice()}
}

func (h *Handler) create(ctx context.Context, s slot.Slot, who identity.Identity) Result {
	b := slot.Booking{
		Facility: s.Facility,
		Period: slot.Period{
			StartFrom: slot.InstantOf(s.Start),
			EndAt:     slot.InstantOf(s.End),
		},
		Client:     slot.Client{UID: who.UID, FullName: who.FullName},
		Facilities: slot.FacilitiesFor(s.Type),
	}

	id, err := h.store.CreateBooking(ctx, b)
	if err != nil {
		res := failed(ActionCreate, err)
		if res.Refetch {
			h.publish(s.Facility)
		}
		return res
	}

	n := bookedNotice(s)
	h.publish(s.Facility)
	h.notify(who.UID, n)
	return Result{Action: ActionCreate, BookingID: id, Refetch: true, Notice: n}
}

func (h *Handler) cancel(ctx context.Context, s slot.Slot, bookingID string, who identity.Identity) Result {
	if err := h.store.DeleteBooking(ctx, bookingID, who.UID); err != nil {
		res := failed(ActionDelete, err)
		res.BookingID = bookingID
		if res.Refetch {
			h.publish(s.Facility)
		}
		return res
	}

	n := cancelledNotice(s)
	h.publish(s.Facility)
	h.notify(who.UID, n)
	return Result{Action: ActionDelete, BookingID: bookingID, Refetch: true, Notice: n}
}

// failed builds the result for err. Conflicts and vanished bookings mean
// the caller's view is stale, so they ask for a refetch.
func failed(action Action, err error) Result {
	return Result{
		Action:  action,
		Refetch: errors.Is(err, store.ErrConflict) || errors.Is(err, store.ErrNotFound),
		Notice:  ErrorNotice(err),
		Err:     err,
	}
}

func (h *Handler) publish(f slot.Facility) {
	if h.publisher != nil {
		h.publisher.Publish(f)
	}
}

func (h *Handler) notify(uid string, n Notice) {
	if h.notifier != nil {
		h.notifier.Notify(uid, n)
	}
}

// View returns the slots of f in the view around ref, reconciled for who.
func (h *Handler) View(ctx context.Context, f slot.Facility, ref time.Time, view slot.View, who identity.Identity) ([]SlotView, error) {
	bookings, err := h.store.FetchBookings(ctx, f)
	if err != nil {
		return nil, err
	}

	now := h.now()
	slots := slot.Reconcile(h.grid.Generate(f, ref, view), bookings, who.UID)
	views := make([]SlotView, len(slots))
	for i, s := range slots {
		views[i] = SlotView{
			Slot:    s,
			Locked:  Locked(s, now),
			Pending: h.pending.Has(PendingKey(f, s.ID)),
		}
	}
	return views, nil
}

// MyBookings returns who's bookings of facility f.
func (h *Handler) MyBookings(ctx context.Context, f slot.Facility, who identity.Identity) ([]slot.Booking, error) {
	bookings, err := h.store.FetchBookings(ctx, f)
	if err != nil {
		return nil, err
	}
	mine := make([]slot.Booking, 0)
	for _, b := range bookings {
		if b.Client.UID == who.UID {
			mine = append(mine, b)
		}
	}
	return mine, nil
}
