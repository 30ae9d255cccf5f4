// Package docstore exposes each record table as a collection with
// create/update/delete writes and live, re-queried subscriptions.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/afrifood/afrifood-backend/pkg/db"
	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
	"github.com/afrifood/afrifood-backend/pkg/logger"
	"github.com/afrifood/afrifood-backend/pkg/metrics"
)

// Record is any gorm model stored in a collection.
type Record interface {
	RecordID() uuid.UUID
}

// Query narrows what List and Subscribe return.
type Query struct {
	// OrderBy is a raw ORDER BY clause; empty uses the collection default.
	OrderBy string
	// Limit caps the result; zero means no cap.
	Limit int
	// Scopes add WHERE clauses and other gorm refinements.
	Scopes []func(*gorm.DB) *gorm.DB
}

// Options wires a collection to its change bus and observability.
type Options struct {
	Bus          Bus
	Logger       *logger.Logger
	Metrics      *metrics.FanoutMetrics
	DefaultOrder string
}

// Collection stores records of type T in the table T maps to. Every
// successful write signals the bus so subscribers re-query.
type Collection[T Record] struct {
	name         string
	db           *gorm.DB
	bus          Bus
	logg         *logger.Logger
	metrics      *metrics.FanoutMetrics
	defaultOrder string
}

func NewCollection[T Record](name string, conn *gorm.DB, opts Options) (*Collection[T], error) {
	if name == "" {
		return nil, errors.New("collection name required")
	}
	if conn == nil {
		return nil, errors.New("db connection required")
	}
	bus := opts.Bus
	if bus == nil {
		bus = NewLocalBus()
	}
	order := opts.DefaultOrder
	if order == "" {
		order = "created_at DESC"
	}
	return &Collection[T]{
		name:         name,
		db:           conn,
		bus:          bus,
		logg:         opts.Logger,
		metrics:      opts.Metrics,
		defaultOrder: order,
	}, nil
}

func (c *Collection[T]) Name() string { return c.name }

// Create inserts rec and returns the storage id assigned to it.
func (c *Collection[T]) Create(ctx context.Context, rec *T) (uuid.UUID, error) {
	if rec == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "record required")
	}
	if err := c.db.WithContext(ctx).Create(rec).Error; err != nil {
		return uuid.Nil, c.classify(err, "create")
	}
	c.signal(ctx)
	return (*rec).RecordID(), nil
}

// Update merges fields into the record with the given id.
func (c *Collection[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	res := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return c.classify(res.Error, "update")
	}
	if res.RowsAffected == 0 {
		// Some drivers report zero rows when nothing changed, so confirm the row is gone.
		exists, err := c.exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return c.notFound(id)
		}
	}
	c.signal(ctx)
	return nil
}

// UpdateWhere applies fields to every record matched by scopes and returns how
// many rows moved.
func (c *Collection[T]) UpdateWhere(ctx context.Context, fields map[string]any, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	if len(fields) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	if len(scopes) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "bulk update requires a filter")
	}
	res := c.db.WithContext(ctx).Model(new(T)).Scopes(scopes...).Updates(fields)
	if res.Error != nil {
		return 0, c.classify(res.Error, "update")
	}
	if res.RowsAffected > 0 {
		c.signal(ctx)
	}
	return res.RowsAffected, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id uuid.UUID) error {
	res := c.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return c.classify(res.Error, "delete")
	}
	if res.RowsAffected == 0 {
		return c.notFound(id)
	}
	c.signal(ctx)
	return nil
}

func (c *Collection[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	var rec T
	if err := c.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error; err != nil {
		if db.IsRecordNotFound(err) {
			return rec, c.notFound(id)
		}
		return rec, c.classify(err, "get")
	}
	return rec, nil
}

func (c *Collection[T]) List(ctx context.Context, q Query) ([]T, error) {
	return c.load(ctx, q)
}

func (c *Collection[T]) Count(ctx context.Context, scopes ...func(*gorm.DB) *gorm.DB) (int64, error) {
	var n int64
	if err := c.db.WithContext(ctx).Model(new(T)).Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, c.classify(err, "count")
	}
	return n, nil
}

func (c *Collection[T]) load(ctx context.Context, q Query) ([]T, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveQuery(c.name, time.Since(start)) }()

	order := q.OrderBy
	if order == "" {
		order = c.defaultOrder
	}
	tx := c.db.WithContext(ctx).Model(new(T)).Scopes(q.Scopes...).Order(order)
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	records := []T{}
	if err := tx.Find(&records).Error; err != nil {
		return nil, c.classify(err, "list")
	}
	return records, nil
}

func (c *Collection[T]) exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, c.classify(err, "lookup")
	}
	return n > 0, nil
}

// signal tells subscribers the collection moved. The write already
// committed, so a failed publish is logged rather than returned.
func (c *Collection[T]) signal(ctx context.Context) {
	if err := c.bus.Publish(ctx, c.name); err != nil {
		c.metrics.PublishFailed(c.name)
		if c.logg != nil {
			c.logg.Error(c.logg.WithCollection(ctx, c.name), "publish change signal failed", err)
		}
	}
}

func (c *Collection[T]) notFound(id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s record %s not found", c.name, id))
}

func (c *Collection[T]) classify(err error, op string) error {
	if db.IsRecordNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("%s record not found", c.name))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) == 5 && pgErr.Code[:2] == "23" {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("%s %s rejected by constraint", op, c.name))
	}
	if db.IsUnavailable(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s: store unavailable", op, c.name))
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("%s %s failed", op, c.name))
}
