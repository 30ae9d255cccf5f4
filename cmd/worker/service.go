package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/afrifood/afrifood-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type watcher interface {
	Start(ctx context.Context) error
	Stop()
}

type scheduler interface {
	Run(ctx context.Context) error
	RunOnce(ctx context.Context) error
}

type ServiceParams struct {
	Logger  *logger.Logger
	Deps    map[string]pinger
	Watcher watcher
	Cron    scheduler
}

// Service runs the notification watcher next to the cron scheduler.
type Service struct {
	logg    *logger.Logger
	deps    map[string]pinger
	watcher watcher
	cron    scheduler
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Watcher == nil {
		return nil, errors.New("notification watcher is required")
	}
	if params.Cron == nil {
		return nil, errors.New("cron scheduler is required")
	}
	return &Service{
		logg:    params.Logger,
		deps:    params.Deps,
		watcher: params.Watcher,
		cron:    params.Cron,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	for name, dep := range s.deps {
		if dep == nil {
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			s.logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

// Run blocks until ctx ends. A canceled context is a clean stop.
func (s *Service) Run(ctx context.Context) error {
	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}
	if err := s.watcher.Start(ctx); err != nil {
		return fmt.Errorf("start notification watcher: %w", err)
	}
	defer s.watcher.Stop()

	err := s.cron.Run(ctx)
	if errors.Is(err, context.Canceled) {
		s.logg.Info(ctx, "worker context canceled")
		return nil
	}
	return err
}

// RunOnce runs a single cron cycle without the watcher.
func (s *Service) RunOnce(ctx context.Context) error {
	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}
	return s.cron.RunOnce(ctx)
}
