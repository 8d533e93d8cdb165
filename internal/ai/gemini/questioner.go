package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/recruitdesk/internal/ai"
	"github.com/spigell/recruitdesk/internal/logger"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string, document []byte) (string, error)
}

// Questioner generates interview questions from a résumé or a job description.
type Questioner struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewQuestioner(generator contentGenerator, log *zap.Logger, maxLogLength int) *Questioner {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Questioner{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

func (q *Questioner) Generate(ctx context.Context, doc ai.Document, count int) ([]ai.QA, error) {
	if err := ai.ValidateCount(count); err != nil {
		return nil, err
	}
	if len(doc.Data) == 0 {
		return nil, ai.ErrEmptyDocument
	}

	prompt := buildPrompt(doc.Kind, count)

	q.logger.Debug("gemini generate content request",
		zap.String("document", doc.Name),
		zap.String("kind", string(doc.Kind)),
		zap.Int("document_size", len(doc.Data)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, q.maxLogLen)),
	)

	raw, err := q.generator.GenerateContent(ctx, prompt, doc.Data)
	if err != nil {
		return nil, err
	}

	q.logger.Debug("gemini generate content response",
		zap.String("document", doc.Name),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, q.maxLogLen)),
	)

	pairs, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if len(pairs) > count {
		pairs = pairs[:count]
	}

	if len(pairs) < count {
		q.logger.Warn("model returned fewer questions than requested",
			zap.Int("requested", count),
			zap.Int("returned", len(pairs)),
		)
	}

	return pairs, nil
}

func buildPrompt(kind ai.Kind, count int) string {
	document := "a candidate's résumé"
	focus := ""
	if kind == ai.KindRequirement {
		document = "a job description"
		focus = "Base the questions only on the skills and the job title, not on company details.\n"
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Document: {{DOCUMENT}}\nQuestions: {{COUNT}}\n{{FOCUS}}\nJSON Response:"
	}

	prompt := strings.ReplaceAll(template, "{{DOCUMENT}}", document)
	prompt = strings.ReplaceAll(prompt, "{{COUNT}}", strconv.Itoa(count))
	prompt = strings.ReplaceAll(prompt, "{{FOCUS}}\n", focus)
	return prompt
}

// parseResponse accepts {"questions_and_answers": [...]} or a bare array, fenced or not.
func parseResponse(raw string) ([]ai.QA, error) {
	cleaned := extractJSON(raw)

	var pairs []ai.QA
	if strings.HasPrefix(cleaned, "[") {
		if err := json.Unmarshal([]byte(cleaned), &pairs); err != nil {
			return nil, fmt.Errorf("parse gemini response: %w", err)
		}
	} else {
		var wrapped struct {
			Pairs []ai.QA `json:"questions_and_answers"`
		}
		if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
			return nil, fmt.Errorf("parse gemini response: %w", err)
		}
		pairs = wrapped.Pairs
	}

	out := make([]ai.QA, 0, len(pairs))
	for _, pair := range pairs {
		pair.Question = strings.TrimSpace(pair.Question)
		pair.Answer = strings.TrimSpace(pair.Answer)
		if pair.Question == "" {
			continue
		}
		out = append(out, pair)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("parse gemini response: no questions in %q", logger.TruncateForLog(raw, defaultMaxLogLength))
	}

	return out, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
