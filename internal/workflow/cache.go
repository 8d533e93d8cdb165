package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/recruitdesk/internal/filtering"
	"github.com/spigell/recruitdesk/internal/logger"
	"github.com/spigell/recruitdesk/internal/metrics"
	"github.com/spigell/recruitdesk/internal/recruit"
)

// ResumeLister fetches the résumés of a requirement.
type ResumeLister interface {
	Resumes(ctx context.Context, requirementID string) (recruit.Resumes, error)
}

// Direction orders résumés by creation time.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	default:
		return "", &ValidationError{Field: "sort", Message: fmt.Sprintf("unknown sort direction %q, use asc or desc", s)}
	}
}

// ResumePatch carries the fields a confirmed status update changes.
type ResumePatch struct {
	StatusID   string
	StatusName string
}

// ResumeCache holds the résumé list of the active requirement.
type ResumeCache struct {
	mu            sync.RWMutex
	lister        ResumeLister
	vocabulary    *Vocabulary
	logger        *zap.Logger
	metrics       *metrics.Manager
	requirementID string
	items         recruit.Resumes
	// generation changes on every Load and Reset; a Load whose generation is no
	// longer current drops its result.
	generation uint64
}

func NewResumeCache(lister ResumeLister, vocabulary *Vocabulary, log *zap.Logger, m *metrics.Manager) *ResumeCache {
	if log == nil {
		log = zap.NewNop()
	}
	if vocabulary == nil {
		vocabulary = NewVocabulary(nil)
	}

	return &ResumeCache{
		lister:     lister,
		vocabulary: vocabulary,
		logger:     log,
		metrics:    m,
	}
}

// Load replaces the list with the résumés of requirementID. On failure the list is
// left empty and the error returned.
func (c *ResumeCache) Load(ctx context.Context, requirementID string) error {
	return c.fill(ctx, c.start(requirementID), requirementID)
}

// start empties the list for requirementID and returns the generation its fill must
// still hold.
func (c *ResumeCache) start(requirementID string) uint64 {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.requirementID = requirementID
	c.items = nil
	c.mu.Unlock()

	c.metrics.CachedResumes(0)

	return gen
}

func (c *ResumeCache) fill(ctx context.Context, gen uint64, requirementID string) error {
	resumes, err := c.lister.Resumes(ctx, requirementID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.metrics.StaleFetch()
		c.logger.Debug("dropping superseded resume list", zap.String(logger.FieldRequirement, requirementID))
		return ErrSuperseded
	}

	if err != nil {
		return fmt.Errorf("loading resumes of requirement %s: %w", requirementID, err)
	}

	for i := range resumes {
		resumes[i].StatusName = c.vocabulary.Resolve(resumes[i].Status())
	}

	c.items = resumes
	c.metrics.CachedResumes(len(resumes))

	return nil
}

// Patch replaces the status fields of one record in place. It reports whether the
// record was present.
func (c *ResumeCache) Patch(resumeID string, patch ResumePatch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ID != resumeID {
			continue
		}

		statusID := patch.StatusID
		c.items[i].StatusID = &statusID
		c.items[i].StatusName = patch.StatusName
		return true
	}

	return false
}

// Sort orders the list by creation time. Records with equal timestamps keep their
// relative order, so sorting twice in the same direction is the same as once.
func (c *ResumeCache) Sort(direction Direction) error {
	if direction != Ascending && direction != Descending {
		_, err := ParseDirection(string(direction))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sort.SliceStable(c.items, func(i, j int) bool {
		if direction == Ascending {
			return c.items[i].CreatedAt.Before(c.items[j].CreatedAt)
		}
		return c.items[i].CreatedAt.After(c.items[j].CreatedAt)
	})

	return nil
}

// All returns a copy of the list in its current order.
func (c *ResumeCache) All() recruit.Resumes {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append(recruit.Resumes(nil), c.items...)
}

// Filtered returns the list narrowed by the given steps.
func (c *ResumeCache) Filtered(ctx context.Context, steps ...filtering.Filter) (recruit.Resumes, error) {
	return filtering.Run(ctx, c.logger, steps, c.All())
}

func (c *ResumeCache) Get(resumeID string) (recruit.Resume, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.items.FindByID(resumeID)
}

// RequirementID is the requirement the list belongs to.
func (c *ResumeCache) RequirementID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.requirementID
}

// Reset discards the list and invalidates any Load still in flight.
func (c *ResumeCache) Reset() {
	c.mu.Lock()
	c.generation++
	c.requirementID = ""
	c.items = nil
	c.mu.Unlock()

	c.metrics.CachedResumes(0)
}

// restore installs a previously saved list, re-resolving status names against the
// current vocabulary.
func (c *ResumeCache) restore(requirementID string, resumes recruit.Resumes) {
	items := append(recruit.Resumes(nil), resumes...)
	for i := range items {
		items[i].StatusName = c.vocabulary.Resolve(items[i].Status())
	}

	c.mu.Lock()
	c.generation++
	c.requirementID = requirementID
	c.items = items
	c.mu.Unlock()

	c.metrics.CachedResumes(len(items))
}
