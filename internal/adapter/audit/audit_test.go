package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-console/internal/domain/entity"
)

func TestLoggerWritesJSONLEvents(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")
	logger, err := NewLogger(logPath, "session-1")
	require.NoError(t, err)

	require.NoError(t, logger.LogAnalysisStart("cust-1", "why was my card declined", "test-model"))
	require.NoError(t, logger.LogRoutingDecision(entity.RoutingDecision{
		SelectedHandler: entity.HandlerTransactionAnalysis,
		Confidence:      map[entity.HandlerKind]float64{entity.HandlerTransactionAnalysis: 0.9},
		Rationale:       "AI selected TransactionAnalysisAgent.",
	}))
	require.NoError(t, logger.LogAnalysisComplete("cust-1", &entity.AnalysisResult{
		Routing:    entity.RoutingDecision{SelectedHandler: entity.HandlerTransactionAnalysis},
		Sentiment:  entity.NeutralSentiment(),
		TokensUsed: 123,
	}, 250*time.Millisecond))
	require.NoError(t, logger.LogError("cust-1", errors.New("usage limit exceeded")))
	require.NoError(t, logger.Close())

	file, err := os.Open(logPath)
	require.NoError(t, err)
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var ev Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, events, 4)

	assert.Equal(t, EventTypeAnalysisStart, events[0].Type)
	assert.Equal(t, "session-1", events[0].SessionID)
	assert.Equal(t, "why was my card declined", events[0].Data["query"])

	assert.Equal(t, EventTypeRoutingDecision, events[1].Type)
	assert.Equal(t, string(entity.HandlerTransactionAnalysis), events[1].Data["selected_handler"])

	assert.Equal(t, EventTypeAnalysisComplete, events[2].Type)
	assert.EqualValues(t, 123, events[2].Data["tokens_used"])

	assert.Equal(t, EventTypeError, events[3].Type)
	assert.Equal(t, "usage limit exceeded", events[3].Data["error"])
}

func TestLoggerAppendsAcrossSessions(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.jsonl")

	first, err := NewLogger(logPath, "session-1")
	require.NoError(t, err)
	require.NoError(t, first.LogAnalysisStart("cust-1", "q1", "m"))
	require.NoError(t, first.Close())

	second, err := NewLogger(logPath, "session-2")
	require.NoError(t, err)
	require.NoError(t, second.LogAnalysisStart("cust-2", "q2", "m"))
	require.NoError(t, second.Close())

	raw, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "session-1")
	assert.Contains(t, string(raw), "session-2")
}
