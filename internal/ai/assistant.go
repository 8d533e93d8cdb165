// Package ai describes the interview question generator used by the questioner command.
package ai

import (
	"context"
	"errors"
	"fmt"
)

const (
	MinQuestions     = 1
	MaxQuestions     = 20
	DefaultQuestions = 5
)

var (
	ErrInvalidCount  = fmt.Errorf("question count must be between %d and %d", MinQuestions, MaxQuestions)
	ErrEmptyDocument = errors.New("document is empty")
)

// Kind tells the generator what the document is.
type Kind string

const (
	KindResume      Kind = "resume"
	KindRequirement Kind = "requirement"
)

// Document is a downloaded résumé or job description.
type Document struct {
	Kind Kind
	Name string
	Data []byte
}

// QA is one generated interview question with a sample answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Questioner interface {
	Generate(ctx context.Context, doc Document, count int) ([]QA, error)
}

// ValidateCount checks that count is within MinQuestions..MaxQuestions.
func ValidateCount(count int) error {
	if count < MinQuestions || count > MaxQuestions {
		return fmt.Errorf("%w, got %d", ErrInvalidCount, count)
	}
	return nil
}
