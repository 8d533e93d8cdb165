package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/recruitdesk/internal/logger"
	"github.com/spigell/recruitdesk/internal/metrics"
)

// StatusUpdater writes a résumé's status to the backend.
type StatusUpdater interface {
	UpdateResumeStatus(ctx context.Context, resumeID, statusID string) error
}

// UpdateState is where a résumé's latest status update stands.
type UpdateState int

const (
	StateIdle UpdateState = iota
	StateSubmitting
	StateApplied
	StateRejected
)

func (s UpdateState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateApplied:
		return "applied"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("UpdateState(%d)", int(s))
	}
}

// Coordinator sends status updates and patches the résumé cache once the backend has
// confirmed them. Nothing is changed locally before confirmation.
type Coordinator struct {
	mu         sync.Mutex
	updater    StatusUpdater
	cache      *ResumeCache
	vocabulary *Vocabulary
	logger     *zap.Logger
	metrics    *metrics.Manager
	states     map[string]UpdateState
}

func NewCoordinator(updater StatusUpdater, cache *ResumeCache, vocabulary *Vocabulary, log *zap.Logger, m *metrics.Manager) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	if vocabulary == nil {
		vocabulary = NewVocabulary(nil)
	}

	return &Coordinator{
		updater:    updater,
		cache:      cache,
		vocabulary: vocabulary,
		logger:     log,
		metrics:    m,
		states:     make(map[string]UpdateState),
	}
}

// UpdateStatus assigns statusID to the résumé. An empty status is rejected without
// contacting the backend, as is a second update for a résumé that is still submitting.
func (c *Coordinator) UpdateStatus(ctx context.Context, resumeID, statusID string) error {
	resumeID = strings.TrimSpace(resumeID)
	statusID = strings.TrimSpace(statusID)

	if resumeID == "" {
		c.metrics.StatusUpdate(metrics.OutcomeInvalid)
		return &ValidationError{Field: "resume", Message: "Please select a résumé."}
	}
	if statusID == "" {
		c.metrics.StatusUpdate(metrics.OutcomeInvalid)
		return &ValidationError{Field: "status", Message: "Please select a status."}
	}

	c.mu.Lock()
	if c.states[resumeID] == StateSubmitting {
		c.mu.Unlock()
		c.metrics.StatusUpdate(metrics.OutcomeBusy)
		return fmt.Errorf("resume %s: %w", resumeID, ErrUpdateInProgress)
	}
	c.states[resumeID] = StateSubmitting
	c.mu.Unlock()

	log := c.logger.With(zap.String(logger.FieldResume, resumeID), zap.String(logger.FieldStatus, statusID))
	log.Debug("submitting status update")

	if err := c.updater.UpdateResumeStatus(ctx, resumeID, statusID); err != nil {
		c.setState(resumeID, StateRejected)
		c.metrics.StatusUpdate(metrics.OutcomeRejected)
		if !errors.Is(err, context.Canceled) {
			log.Warn("status update rejected", zap.Error(err))
		}
		return fmt.Errorf("updating status of resume %s: %w", resumeID, err)
	}

	name := c.vocabulary.Resolve(statusID)
	if !c.cache.Patch(resumeID, ResumePatch{StatusID: statusID, StatusName: name}) {
		log.Debug("updated resume is not in the current list")
	}

	c.setState(resumeID, StateApplied)
	c.metrics.StatusUpdate(metrics.OutcomeApplied)
	log.Info("status updated", zap.String("status", name))

	return nil
}

// State reports the latest update state of a résumé; StateIdle if none was attempted.
func (c *Coordinator) State(resumeID string) UpdateState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.states[resumeID]
}

func (c *Coordinator) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, state := range c.states {
		if state != StateSubmitting {
			delete(c.states, id)
		}
	}
}

func (c *Coordinator) setState(resumeID string, state UpdateState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.states[resumeID] = state
}
