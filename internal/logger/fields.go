package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldSession is the structured log field key for the workflow session id.
	FieldSession = "session_id"
	// FieldClient is the structured log field key for the selected client id.
	FieldClient = "client_id"
	// FieldRequirement is the structured log field key for the selected requirement id.
	FieldRequirement = "requirement_id"
	// FieldResume is the structured log field key for a résumé id.
	FieldResume = "resume_id"
	// FieldStatus is the structured log field key for a status id.
	FieldStatus = "status_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced with a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// SelectionFields describes the current position in the client -> requirement cascade.
// Unselected levels are left out.
func SelectionFields(clientID, requirementID string) []zap.Field {
	return StringFields(
		StringField{Key: FieldClient, Value: clientID},
		StringField{Key: FieldRequirement, Value: requirementID},
	)
}

// WithSelection attaches the selection fields to the provided logger.
func WithSelection(logger *zap.Logger, clientID, requirementID string) *zap.Logger {
	return WithFields(logger, SelectionFields(clientID, requirementID)...)
}
