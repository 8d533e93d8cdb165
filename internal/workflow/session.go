// Package workflow holds the recruiter's working state: the client -> requirement ->
// résumé selection, the cached résumé list and confirmed status updates.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/recruitdesk/internal/filtering"
	"github.com/spigell/recruitdesk/internal/logger"
	"github.com/spigell/recruitdesk/internal/metrics"
	"github.com/spigell/recruitdesk/internal/recruit"
	"github.com/spigell/recruitdesk/internal/store"
)

// API is the part of the backend a session talks to.
type API interface {
	Clients(ctx context.Context) (recruit.Clients, error)
	Statuses(ctx context.Context) (recruit.Statuses, error)
	RequirementLister
	ResumeLister
	StatusUpdater
}

type SessionOption func(*Session)

// WithStore sets where the session is saved. The default keeps it in memory.
func WithStore(s store.Store) SessionOption {
	return func(session *Session) {
		if s != nil {
			session.store = s
		}
	}
}

func WithMetrics(m *metrics.Manager) SessionOption {
	return func(session *Session) {
		session.metrics = m
	}
}

// WithID overrides the generated session id.
func WithID(id string) SessionOption {
	return func(session *Session) {
		if id != "" {
			session.id = id
		}
	}
}

type Session struct {
	id      string
	api     API
	store   store.Store
	logger  *zap.Logger
	metrics *metrics.Manager

	vocabulary  *Vocabulary
	cache       *ResumeCache
	selection   *SelectionState
	coordinator *Coordinator

	mu      sync.RWMutex
	clients recruit.Clients
	closed  bool
}

func NewSession(api API, log *zap.Logger, opts ...SessionOption) *Session {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Session{
		id:         uuid.NewString(),
		api:        api,
		store:      store.NewMemory(),
		vocabulary: NewVocabulary(nil),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger = logger.WithFields(log, zap.String(logger.FieldSession, s.id))
	s.cache = NewResumeCache(api, s.vocabulary, s.logger, s.metrics)
	s.selection = NewSelectionState(api, s.cache, s.vocabulary, s.logger, s.metrics)
	s.coordinator = NewCoordinator(api, s.cache, s.vocabulary, s.logger, s.metrics)

	return s
}

func (s *Session) ID() string { return s.id }

// Start loads the client list and the status vocabulary.
func (s *Session) Start(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	var (
		clients  recruit.Clients
		statuses recruit.Statuses
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.api.Clients(gctx)
		if err != nil {
			return fmt.Errorf("loading clients: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		statuses, err = s.api.Statuses(gctx)
		if err != nil {
			return fmt.Errorf("loading statuses: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.clients = clients
	s.mu.Unlock()
	s.vocabulary.Set(statuses)

	s.logger.Info("session started", zap.Int("clients", len(clients)), zap.Int("statuses", len(statuses)))

	return nil
}

// Restore re-enters the last saved selection. It reports false when nothing was saved.
// The requirement list is fetched again; the résumé list comes from the snapshot.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}

	snap, err := s.store.Load(ctx)
	if errors.Is(err, store.ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading saved session: %w", err)
	}

	if snap.ClientID == "" {
		return false, nil
	}

	if _, ok := s.Clients().FindByID(snap.ClientID); !ok && len(s.Clients()) > 0 {
		s.logger.Info("saved client is gone, starting fresh", zap.String(logger.FieldClient, snap.ClientID))
		return false, nil
	}

	sel, err := s.selection.restore(ctx, Selection{
		ClientID:      snap.ClientID,
		RequirementID: snap.RequirementID,
		StatusFilter:  snap.StatusFilter,
	}, snap.Resumes)
	if err != nil {
		return false, err
	}

	logger.WithSelection(s.logger, sel.ClientID, sel.RequirementID).
		Info("session restored", zap.Time("saved_at", snap.SavedAt))

	return true, nil
}

// Save writes the current selection and résumé list to the store.
func (s *Session) Save(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	return s.save(ctx)
}

func (s *Session) save(ctx context.Context) error {
	sel := s.selection.Current()
	snap := &store.Snapshot{
		SessionID:     s.id,
		ClientID:      sel.ClientID,
		RequirementID: sel.RequirementID,
		StatusFilter:  sel.StatusFilter,
		SavedAt:       time.Now().UTC(),
	}
	// A list still loading belongs to no requirement yet and is not worth keeping.
	if sel.RequirementID != "" && s.cache.RequirementID() == sel.RequirementID {
		snap.Resumes = s.cache.All()
	}

	if err := s.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	return nil
}

// Close cancels running fetches and saves the session. Every later call fails with
// ErrClosed.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.selection.abort()

	return s.save(ctx)
}

// Logout forgets the selection here and in the store.
func (s *Session) Logout(ctx context.Context) error {
	s.Clear()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing saved session: %w", err)
	}

	s.logger.Info("session cleared")

	return nil
}

func (s *Session) SelectClient(ctx context.Context, clientID string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.selection.SelectClient(ctx, clientID)
}

func (s *Session) SelectRequirement(ctx context.Context, requirementID string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.selection.SelectRequirement(ctx, requirementID)
}

func (s *Session) SelectStatusFilter(statusID string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.selection.SelectStatusFilter(statusID)
}

func (s *Session) Clear() {
	s.selection.Clear()
	s.coordinator.reset()
}

func (s *Session) UpdateStatus(ctx context.Context, resumeID, statusID string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.coordinator.UpdateStatus(ctx, resumeID, statusID)
}

func (s *Session) UpdateState(resumeID string) UpdateState {
	return s.coordinator.State(resumeID)
}

func (s *Session) Sort(direction Direction) error {
	return s.cache.Sort(direction)
}

func (s *Session) Clients() recruit.Clients {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append(recruit.Clients(nil), s.clients...)
}

func (s *Session) Requirements() recruit.Requirements {
	return s.selection.Requirements()
}

func (s *Session) Statuses() recruit.Statuses {
	return s.vocabulary.All()
}

func (s *Session) Selection() Selection {
	return s.selection.Current()
}

// Filters returns the steps Resumes applies: the selection's status filter followed by
// extra.
func (s *Session) Filters(extra ...filtering.Filter) []filtering.Filter {
	return append([]filtering.Filter{filtering.NewByStatus(s.selection.Current().StatusFilter)}, extra...)
}

// Resumes returns the cached résumés that pass the status filter and any extra steps.
func (s *Session) Resumes(ctx context.Context, extra ...filtering.Filter) (recruit.Resumes, error) {
	return s.cache.Filtered(ctx, s.Filters(extra...)...)
}

// Resume looks up one cached résumé.
func (s *Session) Resume(resumeID string) (recruit.Resume, bool) {
	return s.cache.Get(resumeID)
}

// SelectedRequirement returns the requirement the résumé list belongs to.
func (s *Session) SelectedRequirement() (recruit.Requirement, bool) {
	return s.selection.SelectedRequirement()
}

// AllResumes returns every cached résumé regardless of filters.
func (s *Session) AllResumes() recruit.Resumes {
	return s.cache.All()
}

func (s *Session) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}
	return nil
}
