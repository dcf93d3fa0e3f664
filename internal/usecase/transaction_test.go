package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-console/internal/domain/entity"
)

func declineContext(reason, location string) *entity.Context {
	bank := testContext()
	bank.Transactions = []entity.Transaction{
		{Date: demoDate(-2), Merchant: "Tokyo Central Market", Location: location, Amount: "$85.00", Status: entity.StatusDeclined, Reason: reason},
	}
	return bank
}

func actionCategories(actions []entity.NextBestAction) []string {
	var categories []string
	for _, a := range actions {
		categories = append(categories, a.Category)
	}
	return categories
}

func TestTransactionDeclineInsufficientFunds(t *testing.T) {
	handler := NewHandler(entity.HandlerTransactionAnalysis, declineContext("Insufficient funds", "Tokyo, Japan"), nil, "")

	result := handler.Process(context.Background(), "Why was my purchase at Tokyo Central Market declined?")

	assert.Contains(t, result.Response, "Insufficient funds")
	assert.Contains(t, result.Response, "account balance wasn't enough")
	assert.Contains(t, actionCategories(result.NextBestActions), "Account Management")
}

func TestTransactionDeclineCardReportedLost(t *testing.T) {
	handler := NewHandler(entity.HandlerTransactionAnalysis, declineContext("Card reported lost", "Barcelona, Spain"), nil, "")

	result := handler.Process(context.Background(), "Why was my tokyo central market charge declined?")

	assert.Contains(t, result.Response, "marked as lost or stolen")
	assert.Contains(t, actionCategories(result.NextBestActions), "Card Services")
	var priorities []entity.Priority
	for _, a := range result.NextBestActions {
		priorities = append(priorities, a.Priority)
	}
	assert.Contains(t, priorities, entity.PriorityHigh)
}

func TestTransactionDeclineIncorrectPIN(t *testing.T) {
	handler := NewHandler(entity.HandlerTransactionAnalysis, declineContext("Incorrect PIN", "Seattle, USA"), nil, "")

	result := handler.Process(context.Background(), "My payment was declined at tokyo central market")

	assert.Contains(t, result.Response, "incorrect PIN")
	var titles []string
	for _, a := range result.NextBestActions {
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "Reset PIN")
}

func TestTransactionDeclineSecurityInternationalUncovered(t *testing.T) {
	bank := declineContext("Unusual activity detected", "Tokyo, Japan")

	handler := NewHandler(entity.HandlerTransactionAnalysis, bank, nil, "")
	result := handler.Process(context.Background(), "Why was my tokyo central market purchase declined?")

	assert.Contains(t, result.Response, "international usage")
	assert.Contains(t, result.Response, "don't see an active travel notice covering this location")
	assert.Contains(t, actionCategories(result.NextBestActions), "Travel Services")
}

func TestTransactionDeclineSecurityCoveredByNotice(t *testing.T) {
	bank := declineContext("Security block", "Barcelona, Spain")

	handler := NewHandler(entity.HandlerTransactionAnalysis, bank, nil, "")
	result := handler.Process(context.Background(), "Why was my tokyo central market purchase declined?")

	assert.Contains(t, result.Response, "Although you have a travel notice")
}

func TestTransactionDeclineUnknownReason(t *testing.T) {
	handler := NewHandler(entity.HandlerTransactionAnalysis, declineContext("Processor error", "Seattle, USA"), nil, "")

	result := handler.Process(context.Background(), "my tokyo central market payment was declined")

	assert.Contains(t, result.Response, "There might be a few reasons")
	var titles []string
	for _, a := range result.NextBestActions {
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "Detailed Transaction Review")
}

func TestTransactionDeclineFocusFindsAllDeclines(t *testing.T) {
	handler := NewHandler(entity.HandlerTransactionAnalysis, testContext(), nil, "")

	result := handler.Process(context.Background(), "Why do my payments keep getting declined?")

	assert.Contains(t, result.Response, "2 recently declined transactions")
	assert.Contains(t, result.Response, "Tokyo Central Market")
	assert.Contains(t, result.Response, "La Casa Tapas")
}

func TestTransactionGeneralQueryShowsRecent(t *testing.T) {
	handler := NewHandler(entity.HandlerTransactionAnalysis, testContext(), nil, "")

	result := handler.Process(context.Background(), "Can you show me my recent transactions?")

	require.NotNil(t, result.Reasoning)
	assert.Equal(t, "last_3_general", result.Reasoning.DecisionFactors["search_mode"])
	// The declined entry inside the recent window takes precedence.
	assert.Contains(t, result.Response, "Tokyo Central Market")
}

func TestTransactionApprovedMatchDescribed(t *testing.T) {
	handler := NewHandler(entity.HandlerTransactionAnalysis, testContext(), nil, "")

	result := handler.Process(context.Background(), "Tell me about the starbucks charge")

	assert.Contains(t, result.Response, "approved successfully")
}

func TestTransactionNothingFound(t *testing.T) {
	bank := testContext()
	bank.Transactions = nil
	handler := NewHandler(entity.HandlerTransactionAnalysis, bank, nil, "")

	result := handler.Process(context.Background(), "Why was my charge at walmart declined?")

	assert.Contains(t, result.Response, "couldn't find any recent transactions")
	assert.Contains(t, result.Response, "declined transaction from a while ago")
}
