package workflow

import (
	"strings"
	"sync"

	"github.com/spigell/recruitdesk/internal/recruit"
)

// UnknownStatus is displayed for a résumé whose status is unset or not in the vocabulary.
const UnknownStatus = "Unknown Status"

// Vocabulary is the status list fetched once per session.
type Vocabulary struct {
	mu       sync.RWMutex
	statuses recruit.Statuses
}

func NewVocabulary(statuses recruit.Statuses) *Vocabulary {
	v := &Vocabulary{}
	v.Set(statuses)
	return v
}

func (v *Vocabulary) Set(statuses recruit.Statuses) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.statuses = append(recruit.Statuses(nil), statuses...)
}

func (v *Vocabulary) All() recruit.Statuses {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return append(recruit.Statuses(nil), v.statuses...)
}

// Resolve returns the display name of the status id, or UnknownStatus.
func (v *Vocabulary) Resolve(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return UnknownStatus
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if name, ok := v.statuses.Name(id); ok {
		return name
	}

	return UnknownStatus
}

func (v *Vocabulary) Known(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	_, ok := v.statuses.Name(id)
	return ok
}

func (v *Vocabulary) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return len(v.statuses)
}
