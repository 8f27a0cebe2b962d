package planner

import (
	"context"
	"sync"
)

// ReconcilerFactory builds a Reconciler for one trip. The service supplies
// the routing-error sink so callers can collect events per pass.
type ReconcilerFactory func(onError func(RoutingError)) *Reconciler

// Service manages one Reconciler per trip. Each trip keeps its segment list
// between requests, so unchanged legs are reused across calls.
type Service struct {
	factory ReconcilerFactory

	mu    sync.Mutex
	trips map[string]*tripSession
}

type tripSession struct {
	reconciler *Reconciler

	mu     sync.Mutex
	events []RoutingError
}

func (t *tripSession) record(ev RoutingError) {
	t.mu.Lock()
	t.events = append(t.events, ev)
	t.mu.Unlock()
}

func (t *tripSession) drain() []RoutingError {
	t.mu.Lock()
	defer t.mu.Unlock()
	events := t.events
	t.events = nil
	return events
}

// NewService creates a trip session service.
func NewService(factory ReconcilerFactory) *Service {
	return &Service{
		factory: factory,
		trips:   make(map[string]*tripSession),
	}
}

func (s *Service) session(tripID string) *tripSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.trips[tripID]; ok {
		return session
	}
	session := &tripSession{}
	session.reconciler = s.factory(session.record)
	s.trips[tripID] = session
	return session
}

// Reconcile runs a pass for the trip and returns the published segments
// plus any routing-error events the pass raised.
func (s *Service) Reconcile(ctx context.Context, tripID string, input PassInput) ([]*Segment, []RoutingError, error) {
	session := s.session(tripID)
	segments, err := session.reconciler.Reconcile(ctx, input)
	return segments, session.drain(), err
}

// Segments returns the trip's current segment list, or nil for an unknown
// trip.
func (s *Service) Segments(tripID string) ([]*Segment, bool) {
	s.mu.Lock()
	session, ok := s.trips[tripID]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return session.reconciler.Segments(), true
}

// Drop tears a trip down, releasing every overlay handle it holds.
func (s *Service) Drop(ctx context.Context, tripID string) bool {
	s.mu.Lock()
	session, ok := s.trips[tripID]
	delete(s.trips, tripID)
	s.mu.Unlock()
	if !ok {
		return false
	}
	// An empty pass releases all published segments.
	_, _ = session.reconciler.Reconcile(ctx, PassInput{})
	return true
}

// TripCount reports the number of live trip sessions.
func (s *Service) TripCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trips)
}
