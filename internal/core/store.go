// Package core implements the billing Domain Store: the in-memory patient,
// service and invoice collections and every operation over them.
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"physiobill/pkg/domain"
)

// Store owns the billing collections. Every mutation is applied to a copy,
// persisted, and only then committed, so a failed save leaves the in-memory
// state untouched. Methods are safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	state     domain.Snapshot
	persister domain.Persister
	logger    Logger
	metrics   MetricsRecorder
	now       func() time.Time
	newID     func() string
	clinic    domain.ClinicInfo
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger.
func WithLogger(l Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the operation metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock overrides the time source used for timestamps and reports.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the record id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClinicInfo sets the clinic profile attached to resolved invoices.
func WithClinicInfo(info domain.ClinicInfo) Option {
	return func(s *Store) { s.clinic = info.WithDefaults() }
}

// NewStore constructs an empty store persisting through p. A nil persister
// keeps state in memory only.
func NewStore(p domain.Persister, opts ...Option) *Store {
	if p == nil {
		p = discardPersister{}
	}
	s := &Store{
		state:     emptySnapshot(),
		persister: p,
		logger:    noopLogger{},
		metrics:   noopMetrics{},
		now:       time.Now,
		newID:     uuid.NewString,
		clinic:    domain.DefaultClinicInfo(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collections with the persisted state.
func (s *Store) Load(ctx context.Context) error {
	start := time.Now()
	snap, err := s.persister.Load(ctx)
	s.metrics.Observe(ctx, "load", err == nil, time.Since(start))
	if err != nil {
		s.logger.Error("load billing state failed", "error", err)
		return fmt.Errorf("load: %w", err)
	}
	s.mu.Lock()
	s.state = normalize(snap)
	s.mu.Unlock()
	s.logger.Info("billing state loaded",
		"patients", len(snap.Patients),
		"services", len(snap.Services),
		"invoices", len(snap.Invoices))
	return nil
}

// ClinicInfo returns the configured clinic profile.
func (s *Store) ClinicInfo() domain.ClinicInfo { return s.clinic }

// mutate runs fn against a copy of the state and commits it after a
// successful save.
func (s *Store) mutate(ctx context.Context, op string, fn func(*domain.Snapshot) error) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe(ctx, op, err == nil, time.Since(start)) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.Clone()
	if err = fn(&next); err != nil {
		s.logger.Debug("mutation rejected", "operation", op, "error", err)
		return err
	}
	if err = s.persister.Save(ctx, next); err != nil {
		s.logger.Error("persist billing state failed", "operation", op, "error", err)
		return fmt.Errorf("%s: persist: %w", op, err)
	}
	s.state = next
	return nil
}

func emptySnapshot() domain.Snapshot {
	return domain.Snapshot{
		Patients: []domain.Patient{},
		Services: []domain.Service{},
		Invoices: []domain.Invoice{},
	}
}

func normalize(snap domain.Snapshot) domain.Snapshot {
	if snap.Patients == nil {
		snap.Patients = []domain.Patient{}
	}
	if snap.Services == nil {
		snap.Services = []domain.Service{}
	}
	if snap.Invoices == nil {
		snap.Invoices = []domain.Invoice{}
	}
	return snap
}

type discardPersister struct{}

func (discardPersister) Load(context.Context) (domain.Snapshot, error) { return emptySnapshot(), nil }
func (discardPersister) Save(context.Context, domain.Snapshot) error   { return nil }
