package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/spigell/recruitdesk/internal/filtering"
	"github.com/spigell/recruitdesk/internal/recruit"
)

func newTestSelection(api *fakeAPI) *SelectionState {
	vocabulary := NewVocabulary(api.statuses)
	cache := NewResumeCache(api, vocabulary, nil, nil)
	return NewSelectionState(api, cache, vocabulary, nil, nil)
}

func TestSelectClientLoadsRequirements(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	sel := newTestSelection(api)

	if err := sel.SelectClient(context.Background(), "c1"); err != nil {
		t.Fatalf("SelectClient returned error: %v", err)
	}

	if diff := cmp.Diff(Selection{ClientID: "c1"}, sel.Current()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(api.requirements["c1"], sel.Requirements()); diff != "" {
		t.Fatalf("requirements mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectClientClearsLowerLevels(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := newFakeAPI()
	sel := newTestSelection(api)

	if err := sel.SelectClient(ctx, "c1"); err != nil {
		t.Fatalf("SelectClient returned error: %v", err)
	}
	if err := sel.SelectRequirement(ctx, "r1"); err != nil {
		t.Fatalf("SelectRequirement returned error: %v", err)
	}
	if err := sel.SelectStatusFilter("s-eligible"); err != nil {
		t.Fatalf("SelectStatusFilter returned error: %v", err)
	}

	release := api.gate("requirements:c2")
	done := make(chan error, 1)
	go func() { done <- sel.SelectClient(ctx, "c2") }()

	if !eventually(func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.requirementsCalls == 2
	}) {
		t.Fatalf("requirements of c2 were never requested")
	}

	if sel.Current().ClientID != "c2" {
		t.Fatalf("client was not switched, got %+v", sel.Current())
	}

	if got := sel.Current(); got.RequirementID != "" || got.StatusFilter != "" {
		t.Fatalf("expected lower levels cleared, got %+v", got)
	}
	if n := len(sel.Requirements()); n != 0 {
		t.Fatalf("expected empty requirement list while fetching, got %d", n)
	}
	if n := len(sel.cache.All()); n != 0 {
		t.Fatalf("expected empty resume list while fetching, got %d", n)
	}

	release()
	if err := <-done; err != nil {
		t.Fatalf("SelectClient returned error: %v", err)
	}
	if diff := cmp.Diff(api.requirements["c2"], sel.Requirements()); diff != "" {
		t.Fatalf("requirements mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectClientFailureLeavesListEmpty(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.requirementsErr = &recruit.APIError{StatusCode: 500, Detail: "db down"}
	sel := newTestSelection(api)

	err := sel.SelectClient(context.Background(), "c1")

	var apiErr *recruit.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if n := len(sel.Requirements()); n != 0 {
		t.Fatalf("expected empty requirement list, got %d", n)
	}
	if sel.Current().ClientID != "c1" {
		t.Fatalf("expected client to stay selected, got %+v", sel.Current())
	}
}

func TestSelectClientEmptyClears(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := newFakeAPI()
	sel := newTestSelection(api)

	if err := sel.SelectClient(ctx, "c1"); err != nil {
		t.Fatalf("SelectClient returned error: %v", err)
	}
	if err := sel.SelectClient(ctx, "  "); err != nil {
		t.Fatalf("SelectClient returned error: %v", err)
	}

	if sel.Current() != (Selection{}) {
		t.Fatalf("expected empty selection, got %+v", sel.Current())
	}
	if api.requirementsCalls != 1 {
		t.Fatalf("expected a single requirements call, got %d", api.requirementsCalls)
	}
}

func TestSupersededClientFetchIsDropped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := newFakeAPI()
	sel := newTestSelection(api)

	api.gate("requirements:c1")
	first := make(chan error, 1)
	go func() { first <- sel.SelectClient(ctx, "c1") }()

	if !eventually(func() bool { return sel.Current().ClientID == "c1" }) {
		t.Fatalf("first selection never started")
	}

	if err := sel.SelectClient(ctx, "c2"); err != nil {
		t.Fatalf("SelectClient returned error: %v", err)
	}

	if err := <-first; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if diff := cmp.Diff(api.requirements["c2"], sel.Requirements()); diff != "" {
		t.Fatalf("stale list leaked (-want +got):\n%s", diff)
	}
}

func TestSelectRequirement(t *testing.T) {
	t.Parallel()

	t.Run("no client", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI()
		sel := newTestSelection(api)

		if err := sel.SelectRequirement(context.Background(), "r1"); !errors.Is(err, ErrNoClientSelected) {
			t.Fatalf("expected ErrNoClientSelected, got %v", err)
		}
		if api.resumesCalls != 0 {
			t.Fatalf("expected no resume fetch, got %d", api.resumesCalls)
		}
	})

	t.Run("requirement of another client", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI()
		sel := newTestSelection(api)
		if err := sel.SelectClient(context.Background(), "c1"); err != nil {
			t.Fatalf("SelectClient returned error: %v", err)
		}

		if err := sel.SelectRequirement(context.Background(), "r2"); !errors.Is(err, ErrUnknownRequirement) {
			t.Fatalf("expected ErrUnknownRequirement, got %v", err)
		}
		if api.resumesCalls != 0 {
			t.Fatalf("expected no resume fetch, got %d", api.resumesCalls)
		}
	})

	t.Run("loads resumes", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI()
		sel := newTestSelection(api)
		ctx := context.Background()
		if err := sel.SelectClient(ctx, "c1"); err != nil {
			t.Fatalf("SelectClient returned error: %v", err)
		}
		if err := sel.SelectRequirement(ctx, "r1"); err != nil {
			t.Fatalf("SelectRequirement returned error: %v", err)
		}

		if diff := cmp.Diff([]string{"x1", "x2", "x3"}, resumeIDs(sel.cache.All())); diff != "" {
			t.Fatalf("resume ids mismatch (-want +got):\n%s", diff)
		}

		requirement, ok := sel.SelectedRequirement()
		if !ok || requirement.Name() != "backend.pdf" {
			t.Fatalf("unexpected selected requirement: %+v, %v", requirement, ok)
		}
	})
}

func TestSupersededResumeFetchIsCancelled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := newFakeAPI()
	api.requirements["c1"] = append(api.requirements["c1"], recruit.Requirement{ID: "r3", ClientID: "c1"})
	api.resumes["r3"] = recruit.Resumes{{ID: "z1"}}
	sel := newTestSelection(api)

	if err := sel.SelectClient(ctx, "c1"); err != nil {
		t.Fatalf("SelectClient returned error: %v", err)
	}

	// Never released: the first fetch can only end through cancellation.
	api.gate("resumes:r1")
	first := make(chan error, 1)
	go func() { first <- sel.SelectRequirement(ctx, "r1") }()

	if !eventually(func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.resumesCalls == 1
	}) {
		t.Fatalf("first fetch never started")
	}

	if err := sel.SelectRequirement(ctx, "r3"); err != nil {
		t.Fatalf("SelectRequirement returned error: %v", err)
	}

	if err := <-first; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if diff := cmp.Diff([]string{"z1"}, resumeIDs(sel.cache.All())); diff != "" {
		t.Fatalf("resume ids mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentClientSwitchesKeepListConsistent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	api := newFakeAPI()
	sel := newTestSelection(api)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		clientID := "c1"
		if i%2 == 1 {
			clientID = "c2"
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := sel.SelectClient(ctx, clientID)
			if err != nil && !errors.Is(err, ErrSuperseded) {
				t.Errorf("SelectClient(%s) returned error: %v", clientID, err)
			}
		}()
	}
	wg.Wait()

	current := sel.Current().ClientID
	for _, r := range sel.Requirements() {
		if r.ClientID != current {
			t.Fatalf("requirement %s of client %s listed while %s is selected", r.ID, r.ClientID, current)
		}
	}
}

func TestSelectStatusFilter(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	sel := newTestSelection(api)

	tests := []struct {
		id      string
		wantErr error
	}{
		{id: "s-eligible"},
		{id: filtering.Unassigned},
		{id: ""},
		{id: "s-missing", wantErr: ErrUnknownStatus},
	}

	for _, tt := range tests {
		err := sel.SelectStatusFilter(tt.id)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("SelectStatusFilter(%q) error = %v, want %v", tt.id, err, tt.wantErr)
		}
		if tt.wantErr == nil && sel.Current().StatusFilter != tt.id {
			t.Fatalf("SelectStatusFilter(%q) stored %q", tt.id, sel.Current().StatusFilter)
		}
	}

	if api.requirementsCalls != 0 || api.resumesCalls != 0 {
		t.Fatalf("status filter reached the backend")
	}
}
