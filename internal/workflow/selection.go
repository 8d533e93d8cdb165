package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/recruitdesk/internal/filtering"
	"github.com/spigell/recruitdesk/internal/logger"
	"github.com/spigell/recruitdesk/internal/metrics"
	"github.com/spigell/recruitdesk/internal/recruit"
)

// RequirementLister fetches the requirements of a client.
type RequirementLister interface {
	Requirements(ctx context.Context, clientID string) (recruit.Requirements, error)
}

// Selection is the cascading choice a person has made. An empty field means nothing
// is selected at that level.
type Selection struct {
	ClientID      string `json:"client_id"`
	RequirementID string `json:"requirement_id"`
	StatusFilter  string `json:"status_filter"`
}

// SelectionState drives the client -> requirement -> résumé cascade. Changing a level
// clears everything below it.
type SelectionState struct {
	mu           sync.RWMutex
	lister       RequirementLister
	cache        *ResumeCache
	vocabulary   *Vocabulary
	logger       *zap.Logger
	metrics      *metrics.Manager
	current      Selection
	requirements recruit.Requirements

	requirementFetch inflight
	resumeFetch      inflight
}

func NewSelectionState(lister RequirementLister, cache *ResumeCache, vocabulary *Vocabulary, log *zap.Logger, m *metrics.Manager) *SelectionState {
	if log == nil {
		log = zap.NewNop()
	}
	if vocabulary == nil {
		vocabulary = NewVocabulary(nil)
	}

	return &SelectionState{
		lister:     lister,
		cache:      cache,
		vocabulary: vocabulary,
		logger:     log,
		metrics:    m,
	}
}

// SelectClient switches to clientID and fetches its requirements. The requirement list
// is empty until the fetch succeeds and stays empty if it fails.
func (s *SelectionState) SelectClient(ctx context.Context, clientID string) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		s.Clear()
		return nil
	}

	// Starting the fetch and switching the selection happen under one lock, so the
	// latest fetch always belongs to the latest selection.
	s.mu.Lock()
	s.resumeFetch.abort()
	fetchCtx, gen := s.requirementFetch.begin(ctx)
	s.current = Selection{ClientID: clientID}
	s.requirements = nil
	s.cache.Reset()
	s.mu.Unlock()

	log := logger.WithSelection(s.logger, clientID, "")
	log.Debug("fetching requirements")

	requirements, err := s.lister.Requirements(fetchCtx, clientID)

	s.mu.Lock()
	if !s.requirementFetch.end(gen) {
		s.mu.Unlock()
		s.metrics.StaleFetch()
		log.Debug("dropping superseded requirement list")
		return ErrSuperseded
	}
	if err == nil {
		s.requirements = requirements
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("loading requirements of client %s: %w", clientID, err)
	}

	log.Debug("requirements loaded", zap.Int("count", len(requirements)))

	return nil
}

// SelectRequirement switches to one of the current client's requirements and loads its
// résumés.
func (s *SelectionState) SelectRequirement(ctx context.Context, requirementID string) error {
	requirementID = strings.TrimSpace(requirementID)

	s.mu.Lock()
	if s.current.ClientID == "" {
		s.mu.Unlock()
		return ErrNoClientSelected
	}

	requirement, ok := s.requirements.FindByID(requirementID)
	if !ok || (requirement.ClientID != "" && requirement.ClientID != s.current.ClientID) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownRequirement, requirementID)
	}

	clientID := s.current.ClientID
	s.current.RequirementID = requirementID
	s.current.StatusFilter = ""
	fetchCtx, gen := s.resumeFetch.begin(ctx)
	cacheGen := s.cache.start(requirementID)
	s.mu.Unlock()

	log := logger.WithSelection(s.logger, clientID, requirementID)
	log.Debug("fetching resumes")

	err := s.cache.fill(fetchCtx, cacheGen, requirementID)
	if !s.resumeFetch.end(gen) {
		return ErrSuperseded
	}

	if err != nil {
		return err
	}

	log.Debug("resumes loaded", zap.Int("count", len(s.cache.All())))

	return nil
}

// SelectStatusFilter narrows the visible résumés to one status. An empty id clears the
// filter and filtering.Unassigned keeps résumés without a status.
func (s *SelectionState) SelectStatusFilter(statusID string) error {
	statusID = strings.TrimSpace(statusID)

	if statusID != "" && statusID != filtering.Unassigned && s.vocabulary.Len() > 0 && !s.vocabulary.Known(statusID) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, statusID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current.StatusFilter = statusID

	return nil
}

// Clear drops the whole selection along with the requirement and résumé lists.
func (s *SelectionState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.abort()
	s.current = Selection{}
	s.requirements = nil
	s.cache.Reset()
}

func (s *SelectionState) Current() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// Requirements returns the requirement list of the selected client.
func (s *SelectionState) Requirements() recruit.Requirements {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append(recruit.Requirements(nil), s.requirements...)
}

func (s *SelectionState) SelectedRequirement() (recruit.Requirement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current.RequirementID == "" {
		return recruit.Requirement{}, false
	}

	return s.requirements.FindByID(s.current.RequirementID)
}

// abort cancels both kinds of fetch.
func (s *SelectionState) abort() {
	s.requirementFetch.abort()
	s.resumeFetch.abort()
}

// restore fetches the requirement list of a saved selection and installs both. A
// requirement that no longer exists is dropped along with its résumés. The fetch is
// tracked like any other, so a newer selection or Clear makes it ErrSuperseded.
func (s *SelectionState) restore(ctx context.Context, sel Selection, resumes recruit.Resumes) (Selection, error) {
	s.mu.Lock()
	s.resumeFetch.abort()
	fetchCtx, gen := s.requirementFetch.begin(ctx)
	s.mu.Unlock()

	requirements, err := s.lister.Requirements(fetchCtx, sel.ClientID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.requirementFetch.end(gen) {
		s.metrics.StaleFetch()
		return Selection{}, ErrSuperseded
	}
	if err != nil {
		return Selection{}, fmt.Errorf("loading requirements of client %s: %w", sel.ClientID, err)
	}

	if _, ok := requirements.FindByID(sel.RequirementID); !ok {
		sel.RequirementID = ""
		sel.StatusFilter = ""
	}

	s.current = sel
	s.requirements = append(recruit.Requirements(nil), requirements...)

	if sel.RequirementID == "" {
		s.cache.Reset()
	} else {
		s.cache.restore(sel.RequirementID, resumes)
	}

	return sel, nil
}
