// Package audit records every analysis turn to a JSONL file so routing
// decisions and fallbacks can be replayed and reviewed after the fact.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"support-console/internal/domain/entity"
)

// EventType identifies what happened during a turn.
type EventType string

const (
	// EventTypeAnalysisStart marks an accepted analysis request.
	EventTypeAnalysisStart EventType = "analysis_start"
	// EventTypeRoutingDecision records which handler a query was assigned to.
	EventTypeRoutingDecision EventType = "routing_decision"
	// EventTypeAnalysisComplete records the turn outcome and token usage.
	EventTypeAnalysisComplete EventType = "analysis_complete"
	// EventTypeError records a turn rejected or failed outright.
	EventTypeError EventType = "error"
)

// Event is one JSONL line in the audit trail.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// Logger appends events to a JSONL file. Safe for concurrent use.
type Logger struct {
	file      *os.File
	writer    *bufio.Writer
	mutex     sync.Mutex
	sessionID string
}

// NewLogger opens (or creates) the audit log at filePath. Existing content is
// appended to, never truncated.
func NewLogger(filePath, sessionID string) (*Logger, error) {
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	return &Logger{
		file:      file,
		writer:    bufio.NewWriter(file),
		sessionID: sessionID,
	}, nil
}

func (l *Logger) write(event Event) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}
	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	if err := l.writer.WriteByte('\n'); err != nil {
		return err
	}
	return l.writer.Flush()
}

func (l *Logger) event(eventType EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now(),
		Type:      eventType,
		SessionID: l.sessionID,
		Data:      data,
	}
}

// LogAnalysisStart records an accepted request. The credential is never
// logged.
func (l *Logger) LogAnalysisStart(customerID, query, model string) error {
	return l.write(l.event(EventTypeAnalysisStart, map[string]any{
		"customer_id": customerID,
		"query":       query,
		"model":       model,
	}))
}

// LogRoutingDecision records the selected handler with its confidence and
// rationale.
func (l *Logger) LogRoutingDecision(decision entity.RoutingDecision) error {
	return l.write(l.event(EventTypeRoutingDecision, map[string]any{
		"selected_handler": decision.SelectedHandler,
		"confidence":       decision.Confidence[decision.SelectedHandler],
		"rationale":        decision.Rationale,
	}))
}

// LogAnalysisComplete records the turn outcome.
func (l *Logger) LogAnalysisComplete(customerID string, result *entity.AnalysisResult, duration time.Duration) error {
	return l.write(l.event(EventTypeAnalysisComplete, map[string]any{
		"customer_id":      customerID,
		"selected_handler": result.Routing.SelectedHandler,
		"sentiment":        result.Sentiment.Sentiment,
		"actions":          len(result.RecommendedActions),
		"tokens_used":      result.TokensUsed,
		"duration_ms":      duration.Milliseconds(),
	}))
}

// LogError records a rejected or failed turn.
func (l *Logger) LogError(customerID string, err error) error {
	return l.write(l.event(EventTypeError, map[string]any{
		"customer_id": customerID,
		"error":       err.Error(),
	}))
}

// Close flushes buffered events and closes the file.
func (l *Logger) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if err := l.writer.Flush(); err != nil {
		return err
	}
	return l.file.Close()
}
