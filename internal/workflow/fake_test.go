package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/spigell/recruitdesk/internal/recruit"
)

func strPtr(s string) *string { return &s }

// fakeAPI serves canned data. A channel in gates blocks the matching call until it
// is closed or the context ends.
type fakeAPI struct {
	mu sync.Mutex

	clients      recruit.Clients
	statuses     recruit.Statuses
	requirements map[string]recruit.Requirements
	resumes      map[string]recruit.Resumes

	clientsErr      error
	statusesErr     error
	requirementsErr error
	resumesErr      error
	updateErr       error

	gates map[string]chan struct{}

	updates           []string
	requirementsCalls int
	resumesCalls      int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		clients: recruit.Clients{
			{ID: "c1", Name: "Acme"},
			{ID: "c2", Name: "Globex"},
		},
		statuses: recruit.Statuses{
			{ID: "s-eligible", Name: "Eligible"},
			{ID: "s-rejected", Name: "Rejected"},
		},
		requirements: map[string]recruit.Requirements{
			"c1": {{ID: "r1", ClientID: "c1", Filename: "backend.pdf"}},
			"c2": {{ID: "r2", ClientID: "c2", Filename: "frontend.pdf"}},
		},
		resumes: map[string]recruit.Resumes{
			"r1": {
				{ID: "x1", RequirementID: "r1", Filename: "alice.pdf", CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
				{ID: "x2", RequirementID: "r1", Filename: "bob.pdf", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), StatusID: strPtr("s-rejected")},
				{ID: "x3", RequirementID: "r1", Filename: "carol.pdf", CreatedAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), StatusID: strPtr("s-gone")},
			},
			"r2": {
				{ID: "y1", RequirementID: "r2", Filename: "dave.pdf", CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
			},
		},
		gates: make(map[string]chan struct{}),
	}
}

// gate makes calls keyed by key block until release is called.
func (f *fakeAPI) gate(key string) (release func()) {
	ch := make(chan struct{})

	f.mu.Lock()
	f.gates[key] = ch
	f.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *fakeAPI) wait(ctx context.Context, key string) error {
	f.mu.Lock()
	ch, ok := f.gates[key]
	f.mu.Unlock()

	if !ok {
		return nil
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAPI) Clients(ctx context.Context) (recruit.Clients, error) {
	if err := f.wait(ctx, "clients"); err != nil {
		return nil, err
	}
	return append(recruit.Clients(nil), f.clients...), f.clientsErr
}

func (f *fakeAPI) Statuses(ctx context.Context) (recruit.Statuses, error) {
	if err := f.wait(ctx, "statuses"); err != nil {
		return nil, err
	}
	return append(recruit.Statuses(nil), f.statuses...), f.statusesErr
}

func (f *fakeAPI) Requirements(ctx context.Context, clientID string) (recruit.Requirements, error) {
	f.mu.Lock()
	f.requirementsCalls++
	f.mu.Unlock()

	if err := f.wait(ctx, "requirements:"+clientID); err != nil {
		return nil, err
	}
	if f.requirementsErr != nil {
		return nil, f.requirementsErr
	}
	return append(recruit.Requirements(nil), f.requirements[clientID]...), nil
}

func (f *fakeAPI) Resumes(ctx context.Context, requirementID string) (recruit.Resumes, error) {
	f.mu.Lock()
	f.resumesCalls++
	f.mu.Unlock()

	if err := f.wait(ctx, "resumes:"+requirementID); err != nil {
		return nil, err
	}
	if f.resumesErr != nil {
		return nil, f.resumesErr
	}
	return append(recruit.Resumes(nil), f.resumes[requirementID]...), nil
}

func (f *fakeAPI) UpdateResumeStatus(ctx context.Context, resumeID, statusID string) error {
	f.mu.Lock()
	f.updates = append(f.updates, resumeID+"="+statusID)
	f.mu.Unlock()

	if err := f.wait(ctx, "update:"+resumeID); err != nil {
		return err
	}
	return f.updateErr
}

func (f *fakeAPI) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

// eventually polls cond until it holds or a second passes.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
