// Package newsletter records newsletter sign-ups with the subscriber's
// location and greets them by email.
package newsletter

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/afrifood/afrifood-backend/internal/notifications"
	"github.com/afrifood/afrifood-backend/pkg/db/models"
	"github.com/afrifood/afrifood-backend/pkg/docstore"
	"github.com/afrifood/afrifood-backend/pkg/enums"
	pkgerrors "github.com/afrifood/afrifood-backend/pkg/errors"
	"github.com/afrifood/afrifood-backend/pkg/logger"
)

const (
	DefaultLocateTimeout  = 10 * time.Second
	DefaultWelcomeTimeout = 10 * time.Second
)

type SubscribeInput struct {
	Email         string
	Position      *Coordinates
	PositionError string
}

// WelcomeSender greets new subscribers.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, email string) error
}

type Notifier interface {
	Notify(ctx context.Context, typ enums.NotificationType, message string, data map[string]any)
}

type Service interface {
	Subscribe(ctx context.Context, input SubscribeInput) (uuid.UUID, error)
	AddManual(ctx context.Context, email string) (uuid.UUID, error)
	Edit(ctx context.Context, id uuid.UUID, email string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.NewsletterSubscriber, error)
	SendWelcome(ctx context.Context, email string) error
	// Wait blocks until in-flight welcome emails finish.
	Wait()
}

type service struct {
	store          *docstore.Collection[models.NewsletterSubscriber]
	locator        Locator
	notifier       Notifier
	mailer         WelcomeSender
	logg           *logger.Logger
	locateTimeout  time.Duration
	welcomeTimeout time.Duration
	wg             sync.WaitGroup
}

type Config struct {
	Store          *docstore.Collection[models.NewsletterSubscriber]
	Locator        Locator
	Notifier       Notifier
	Mailer         WelcomeSender
	Logger         *logger.Logger
	LocateTimeout  time.Duration
	WelcomeTimeout time.Duration
}

func NewService(cfg Config) (Service, error) {
	if cfg.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "newsletter store required")
	}
	if cfg.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	s := &service{
		store:          cfg.Store,
		locator:        cfg.Locator,
		notifier:       cfg.Notifier,
		mailer:         cfg.Mailer,
		logg:           cfg.Logger,
		locateTimeout:  cfg.LocateTimeout,
		welcomeTimeout: cfg.WelcomeTimeout,
	}
	if s.locator == nil {
		s.locator = ReportedLocator{}
	}
	if s.locateTimeout <= 0 {
		s.locateTimeout = DefaultLocateTimeout
	}
	if s.welcomeTimeout <= 0 {
		s.welcomeTimeout = DefaultWelcomeTimeout
	}
	return s, nil
}

// Subscribe records a sign-up. A missing location is stored as
// location.error and never fails the sign-up. Signing up twice with the same
// email creates two entries.
func (s *service) Subscribe(ctx context.Context, input SubscribeInput) (uuid.UUID, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return uuid.Nil, err
	}

	locCtx, cancel := context.WithTimeout(ctx, s.locateTimeout)
	loc, err := s.locator.Locate(locCtx, input)
	cancel()
	if err != nil {
		loc = locationFailure(err)
	}

	id, err := s.create(ctx, email, loc)
	if err != nil {
		return uuid.Nil, err
	}

	s.notifier.Notify(ctx, enums.NotificationTypeNewsletter,
		notifications.NewsletterMessage(email), notifications.NewsletterData(email, loc))

	s.welcomeAsync(ctx, email)
	return id, nil
}

// AddManual is the admin add: no location, no notification, no email.
func (s *service) AddManual(ctx context.Context, email string) (uuid.UUID, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return uuid.Nil, err
	}
	return s.create(ctx, normalized, models.Location{Error: LocationManual})
}

func (s *service) create(ctx context.Context, email string, loc models.Location) (uuid.UUID, error) {
	sub := &models.NewsletterSubscriber{
		Email:  email,
		Status: enums.SubscriberStatusActive,
	}
	sub.SetLocation(loc)
	return s.store.Create(ctx, sub)
}

func (s *service) Edit(ctx context.Context, id uuid.UUID, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	return s.store.Update(ctx, id, map[string]any{"email": normalized})
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	return s.store.List(ctx, docstore.Query{OrderBy: "subscribed_at DESC"})
}

func (s *service) SendWelcome(ctx context.Context, email string) error {
	if s.mailer == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "mailer not configured")
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	return s.mailer.SendWelcome(ctx, normalized)
}

func (s *service) welcomeAsync(ctx context.Context, email string) {
	if s.mailer == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sendCtx, cancel := context.WithTimeout(base, s.welcomeTimeout)
		defer cancel()
		if err := s.mailer.SendWelcome(sendCtx, email); err != nil && s.logg != nil {
			s.logg.Error(s.logg.WithField(base, "email", email), "welcome email failed", err)
		}
	}()
}

func (s *service) Wait() {
	s.wg.Wait()
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid email").
			WithDetails(map[string]any{"email": email})
	}
	return email, nil
}
