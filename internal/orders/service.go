package orders

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/afrifood/afrifood-backend/internal/notifications"
	"github.com/afrifood/afrifood-backend/pkg/contactlinks"
	"github.com/afrifood/afrifood-backend/pkg/db/models"
	"github.com/afrifood/afrifood-backend/pkg/displayid"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
	"github.com/afrifood/afrifood-backend/pkg/enums"
	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
	"github.com/afrifood/afrifood-backend/pkg/pagination"
)

// Service captures orders and reservations and moves them through the
// status lifecycle.
type Service interface {
	CreateOrder(ctx context.Context, input OrderInput) (*OrderReceipt, error)
	CreateReservation(ctx context.Context, input ReservationInput) (*models.Reservation, error)
	TrackOrder(ctx context.Context, code string) (*OrderTracking, error)
	SetOrderStatus(ctx context.Context, id uuid.UUID, status string) error
	SetReservationStatus(ctx context.Context, id uuid.UUID, status string) error
	ListOrders(ctx context.Context, filters ListFilters) (*OrderPage, error)
	ListReservations(ctx context.Context, filters ListFilters) (*ReservationPage, error)
}

type service struct {
	orders       *docstore.Collection[models.Order]
	reservations *docstore.Collection[models.Reservation]
	prices       PriceBook
	notifier     Notifier
	links        contactlinks.Builder
	now          func() time.Time
}

// Option customizes the service.
type Option func(*service)

// WithClock overrides the clock used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLinks(b contactlinks.Builder) Option {
	return func(s *service) { s.links = b }
}

func NewService(
	orders *docstore.Collection[models.Order],
	reservations *docstore.Collection[models.Reservation],
	prices PriceBook,
	notifier Notifier,
	opts ...Option,
) (Service, error) {
	if orders == nil || reservations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order and reservation stores required")
	}
	if prices == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "price book required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	s := &service{
		orders:       orders,
		reservations: reservations,
		prices:       prices,
		notifier:     notifier,
		links:        contactlinks.New("", ""),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) CreateOrder(ctx context.Context, input OrderInput) (*OrderReceipt, error) {
	input = normalizeOrder(input)
	if err := validateOrder(input); err != nil {
		return nil, err
	}

	unitPrice, err := s.prices.Price(input.Item)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := models.Order{
		Code:      displayid.Generate(),
		Name:      input.Name,
		Phone:     input.Phone,
		Address:   input.Address,
		Item:      input.Item,
		Quantity:  input.Quantity,
		Notes:     input.Notes,
		UnitPrice: unitPrice,
		Total:     unitPrice * int64(input.Quantity),
		Status:    enums.RecordStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.orders.Create(ctx, &order); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, enums.NotificationTypeOrder,
		notifications.OrderMessage(order.Code, order.Name), notifications.OrderData(order))

	return &OrderReceipt{Order: order, Links: s.links.For(order.Code)}, nil
}

func (s *service) CreateReservation(ctx context.Context, input ReservationInput) (*models.Reservation, error) {
	input = normalizeReservation(input)
	if err := validateReservation(input); err != nil {
		return nil, err
	}

	now := s.now()
	reservation := models.Reservation{
		Code:      displayid.Generate(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Date:      input.Date,
		Time:      input.Time,
		Guests:    *input.Guests,
		Notes:     input.Notes,
		Status:    enums.RecordStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.reservations.Create(ctx, &reservation); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, enums.NotificationTypeReservation,
		notifications.ReservationMessage(reservation.Code, reservation.Name), notifications.ReservationData(reservation))

	return &reservation, nil
}

// SetOrderStatus writes status and bumps updated_at. Any status may follow any
// other, including itself.
func (s *service) SetOrderStatus(ctx context.Context, id uuid.UUID, status string) error {
	fields, err := s.statusFields(status)
	if err != nil {
		return err
	}
	return s.orders.Update(ctx, id, fields)
}

func (s *service) SetReservationStatus(ctx context.Context, id uuid.UUID, status string) error {
	fields, err := s.statusFields(status)
	if err != nil {
		return err
	}
	return s.reservations.Update(ctx, id, fields)
}

func (s *service) statusFields(raw string) (map[string]any, error) {
	status, err := enums.ParseRecordStatus(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidStatus, err, "unknown status").
			WithDetails(map[string]any{"status": raw, "allowed": enums.RecordStatuses()})
	}
	return map[string]any{
		"status":     status,
		"updated_at": s.now(),
	}, nil
}

// TrackOrder finds an order by display id. Codes are not checked for
// collisions, so the newest match wins.
func (s *service) TrackOrder(ctx context.Context, code string) (*OrderTracking, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !displayid.Valid(code) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id").
			WithDetails(map[string]any{"id": code})
	}
	rows, err := s.orders.List(ctx, docstore.Query{
		Limit: 1,
		Scopes: []func(*gorm.DB) *gorm.DB{func(tx *gorm.DB) *gorm.DB {
			return tx.Where("code = ?", code)
		}},
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", code))
	}
	o := rows[0]
	return &OrderTracking{
		Code:      o.Code,
		Item:      o.Item,
		Quantity:  o.Quantity,
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Links:     s.links.For(o.Code),
	}, nil
}

func (s *service) ListOrders(ctx context.Context, filters ListFilters) (*OrderPage, error) {
	q, err := listQuery(filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.orders.List(ctx, q)
	if err != nil {
		return nil, err
	}
	items, cursor := pagination.Trim(rows, filters.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return &OrderPage{Items: items, Cursor: cursor}, nil
}

func (s *service) ListReservations(ctx context.Context, filters ListFilters) (*ReservationPage, error) {
	q, err := listQuery(filters)
	if err != nil {
		return nil, err
	}
	rows, err := s.reservations.List(ctx, q)
	if err != nil {
		return nil, err
	}
	items, cursor := pagination.Trim(rows, filters.Limit, func(r models.Reservation) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	})
	return &ReservationPage{Items: items, Cursor: cursor}, nil
}

func listQuery(filters ListFilters) (docstore.Query, error) {
	cursor, err := pagination.ParseCursor(filters.Cursor)
	if err != nil {
		return docstore.Query{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	scopes := []func(*gorm.DB) *gorm.DB{pagination.After("created_at", cursor)}
	if filters.Status != nil {
		status := *filters.Status
		scopes = append(scopes, func(tx *gorm.DB) *gorm.DB {
			return tx.Where("status = ?", status)
		})
	}
	return docstore.Query{
		OrderBy: pagination.OrderBy("created_at"),
		Limit:   pagination.LimitWithBuffer(filters.Limit),
		Scopes:  scopes,
	}, nil
}

func normalizeOrder(in OrderInput) OrderInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.Item = strings.TrimSpace(in.Item)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.Address == "" {
		in.Address = DefaultAddress
	}
	if in.Quantity == 0 {
		in.Quantity = DefaultQuantity
	}
	return in
}

func validateOrder(in OrderInput) error {
	missing := []string{}
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Phone == "" {
		missing = append(missing, "phone")
	}
	if in.Item == "" {
		missing = append(missing, "item")
	}
	if len(missing) > 0 {
		return requiredError(missing)
	}
	if in.Quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
			WithDetails(map[string]any{"quantity": in.Quantity})
	}
	return nil
}

func normalizeReservation(in ReservationInput) ReservationInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Notes = strings.TrimSpace(in.Notes)
	if in.Guests == nil {
		guests := DefaultGuests
		in.Guests = &guests
	}
	return in
}

func validateReservation(in ReservationInput) error {
	missing := []string{}
	for _, f := range []struct{ name, value string }{
		{"name", in.Name},
		{"email", in.Email},
		{"phone", in.Phone},
		{"date", in.Date},
		{"time", in.Time},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return requiredError(missing)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid email")
	}
	if _, err := time.Parse(time.DateOnly, in.Date); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "time must be HH:MM")
	}
	if g := *in.Guests; g < MinGuests || g > MaxGuests {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("guests must be between %d and %d", MinGuests, MaxGuests)).
			WithDetails(map[string]any{"guests": g})
	}
	return nil
}

func requiredError(fields []string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").
		WithDetails(map[string]any{"fields": fields})
}
