package cmd

import (
	"context"
	"testing"

	"github.com/manifoldco/promptui/list"

	"github.com/spigell/recruitdesk/internal/store"
)

func TestOptionsKeepEqualLabelsApart(t *testing.T) {
	opts := options([]string{"JD.pdf", "JD.pdf", PromptBack, PromptExit})

	l, err := list.New(opts, promptListSize)
	if err != nil {
		t.Fatalf("list.New returned error: %v", err)
	}

	l.Next()

	if got := l.Index(); got != 1 {
		t.Fatalf("expected the second JD.pdf at index 1, got %d", got)
	}
	if opts[l.Index()].Label != "JD.pdf" {
		t.Fatalf("unexpected label %q", opts[l.Index()].Label)
	}

	l.Next()
	if got := l.Index(); got != 2 || opts[got].Label != PromptBack {
		t.Fatalf("expected %q at index 2, got %d", PromptBack, got)
	}
}

func TestSavedSessionID(t *testing.T) {
	ctx := context.Background()
	memory := store.NewMemory()

	if got := savedSessionID(ctx, memory); got != "" {
		t.Fatalf("expected no id from an empty store, got %q", got)
	}

	if err := memory.Save(ctx, &store.Snapshot{SessionID: "abc"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if got := savedSessionID(ctx, memory); got != "" {
		t.Fatalf("expected no id without a selection, got %q", got)
	}

	if err := memory.Save(ctx, &store.Snapshot{SessionID: "abc", ClientID: "c1"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if got := savedSessionID(ctx, memory); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}
