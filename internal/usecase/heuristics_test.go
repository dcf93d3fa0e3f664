package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-console/internal/domain/entity"
)

func TestScoreQueryTravelNoticePhrase(t *testing.T) {
	score := ScoreQuery("I submitted a travel notice for my trip to Paris but my card was declined", testContext())

	assert.NotEmpty(t, score.KeywordMatches[entity.HandlerTravelNotice])
	assert.NotEmpty(t, score.PatternMatches[entity.HandlerTravelNotice])
	assert.GreaterOrEqual(t, score.ContextScores[entity.HandlerTravelNotice], 3,
		"travel+notice wording should add the combined context bonus")
}

func TestScoreQueryMoreEvidenceNeverScoresLess(t *testing.T) {
	bank := testContext()
	base := ScoreQuery("my payment was declined", bank)
	richer := ScoreQuery("my payment was declined, why did the transaction fail", bank)

	assert.GreaterOrEqual(t,
		len(richer.KeywordMatches[entity.HandlerTransactionAnalysis]),
		len(base.KeywordMatches[entity.HandlerTransactionAnalysis]))
	assert.GreaterOrEqual(t,
		len(richer.PatternMatches[entity.HandlerTransactionAnalysis]),
		len(base.PatternMatches[entity.HandlerTransactionAnalysis]))
}

func TestScoreContextDeclinedOutweighsApproved(t *testing.T) {
	bank := &entity.Context{
		Transactions: []entity.Transaction{
			{Merchant: "Uber", Location: "Berlin, Germany", Status: entity.StatusApproved},
			{Merchant: "Tokyo Central Market", Location: "Tokyo, Japan", Status: entity.StatusDeclined, Reason: "Insufficient funds"},
		},
	}

	approvedOnly := ScoreQuery("tell me about the uber charge", bank)
	declined := ScoreQuery("tell me about the tokyo central market charge", bank)

	require.Equal(t, 1, approvedOnly.ContextScores[entity.HandlerTransactionAnalysis])
	assert.Equal(t, 2, declined.ContextScores[entity.HandlerTransactionAnalysis])
}

func TestScoreContextTransactionCluesCombineByMax(t *testing.T) {
	bank := testContext()
	score := ScoreQuery("why were my tokyo central market and la casa tapas charges declined", bank)

	assert.Equal(t, 2, score.ContextScores[entity.HandlerTransactionAnalysis],
		"two declined-transaction clues should not stack beyond the maximum")
}

func TestScoreContextLostCardBonus(t *testing.T) {
	score := ScoreQuery("I lost my card yesterday", nil)
	assert.GreaterOrEqual(t, score.ContextScores[entity.HandlerCardServices], 3)
}

func TestScoreContextDestinationMentionsAccumulate(t *testing.T) {
	one := ScoreQuery("I'm flying to tokyo next week", nil)
	two := ScoreQuery("I'm flying to tokyo and then berlin next week", nil)

	require.Equal(t, 1, one.ContextScores[entity.HandlerTravelNotice])
	assert.Equal(t, 2, two.ContextScores[entity.HandlerTravelNotice],
		"each destination mention contributes its own point")
}

func TestScoreQueryEmptyQueryYieldsNoEvidence(t *testing.T) {
	score := ScoreQuery("", testContext())
	assert.Empty(t, score.KeywordMatches)
	assert.Empty(t, score.PatternMatches)
}
