package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-console/internal/domain/entity"
)

func TestTravelCheckStatusFlagsBrokenActivation(t *testing.T) {
	bank := testContext()
	handler := NewHandler(entity.HandlerTravelNotice, bank, nil, "")

	result := handler.Process(context.Background(), "Is my travel notice active?")

	assert.Contains(t, result.Response, "wasn't activated correctly due to a system issue")
	assert.Contains(t, result.Response, "I can fix that for you right now")
	var titles []string
	for _, a := range result.NextBestActions {
		titles = append(titles, a.Title)
		if a.Title == "Fix & Activate Notice" {
			assert.Equal(t, entity.PriorityHigh, a.Priority)
		}
	}
	assert.Contains(t, titles, "Fix & Activate Notice")
	assert.Equal(t, "Submitted but not activated due to system error", bank.Notice.Status,
		"a status check must not mutate the notice")
}

func TestTravelActivateFixesStuckNotice(t *testing.T) {
	bank := testContext()
	handler := NewHandler(entity.HandlerTravelNotice, bank, nil, "")

	result := handler.Process(context.Background(), "Can you activate my travel notice please?")

	assert.Contains(t, result.Response, "I found the issue!")
	assert.Equal(t, "Active", bank.Notice.Status, "the fix must be visible to later stages in the turn")

	var titles []string
	for _, a := range result.NextBestActions {
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "Confirm Recent Declines Resolved")
}

func TestTravelActivateIsIdempotent(t *testing.T) {
	bank := testContext()
	handler := NewHandler(entity.HandlerTravelNotice, bank, nil, "")

	first := handler.Process(context.Background(), "activate my travel notice")
	require.Contains(t, first.Response, "I found the issue!")

	second := handler.Process(context.Background(), "activate my travel notice")
	assert.Contains(t, second.Response, "already active")
	assert.Equal(t, "Active", bank.Notice.Status)
}

func TestTravelCheckStatusAfterFixReportsActive(t *testing.T) {
	bank := testContext()
	bank.Notice.Status = "Active"
	handler := NewHandler(entity.HandlerTravelNotice, bank, nil, "")

	result := handler.Process(context.Background(), "what's the status of my travel notice")

	assert.Contains(t, result.Response, "active travel notice")
	assert.NotContains(t, result.Response, "system issue")
}

func TestTravelCheckStatusNoNotice(t *testing.T) {
	bank := testContext()
	bank.Notice = nil
	handler := NewHandler(entity.HandlerTravelNotice, bank, nil, "")

	result := handler.Process(context.Background(), "Is there a travel notice on my account?")

	assert.Contains(t, result.Response, "don't have any active travel notices")
	var titles []string
	for _, a := range result.NextBestActions {
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "Create Travel Notice")
}

func TestTravelCreateWithExistingNoticeOffersUpdate(t *testing.T) {
	bank := testContext()
	handler := NewHandler(entity.HandlerTravelNotice, bank, nil, "")

	result := handler.Process(context.Background(), "I need to set up a travel notice for my trip")

	assert.Contains(t, result.Response, "already have a travel notice active")
	assert.Contains(t, result.Response, "France, Italy, Spain")
}

func TestTravelUpdateMentionedCountryNotIncluded(t *testing.T) {
	bank := testContext()
	handler := NewHandler(entity.HandlerTravelNotice, bank, nil, "")

	result := handler.Process(context.Background(), "Please update my travel notice, I'm also visiting Japan")

	assert.Contains(t, result.Response, "Japan")
	assert.Contains(t, result.Response, "Would you like to add them to the notice?")
}

func TestTravelUpdateWithoutNoticeOffersCreate(t *testing.T) {
	bank := testContext()
	bank.Notice = nil
	handler := NewHandler(entity.HandlerTravelNotice, bank, nil, "")

	result := handler.Process(context.Background(), "update my travel notice")

	assert.Contains(t, result.Response, "don't have an active travel notice to update")
}

func TestTravelDeclineComplaintWithStuckNoticeChecksStatus(t *testing.T) {
	bank := testContext()
	handler := NewHandler(entity.HandlerTravelNotice, bank, nil, "")

	// The customer recaps setting up the notice, but the decline complaint
	// with a stuck notice calls for a status check, not a new notice.
	result := handler.Process(context.Background(), "Why was my card declined in Paris, I set up a travel notice!")

	assert.Contains(t, result.Response, "wasn't activated correctly due to a system issue")
	assert.Contains(t, result.Response, "I can fix that for you right now")
	assert.NotContains(t, result.Response, "already have a travel notice active")
	var titles []string
	for _, a := range result.NextBestActions {
		titles = append(titles, a.Title)
		if a.Title == "Fix & Activate Notice" {
			assert.Equal(t, entity.PriorityHigh, a.Priority)
		}
	}
	assert.Contains(t, titles, "Fix & Activate Notice")
}

func TestTravelCrossCheckSuggestsUncoveredCountry(t *testing.T) {
	bank := testContext()
	bank.Notice.Status = "Active"
	bank.Transactions = append(bank.Transactions, entity.Transaction{
		Date: demoDate(-1), Merchant: "Tokyo Central Market", Location: "Tokyo, Japan",
		Amount: "$85.00", Status: entity.StatusDeclined, Reason: "Unusual activity - possible travel",
	})
	handler := NewHandler(entity.HandlerTravelNotice, bank, nil, "")

	result := handler.Process(context.Background(), "what is the status of my travel notice")

	assert.Contains(t, result.Response, "Additionally:")
	assert.Contains(t, result.Response, "Japan")
	var titles []string
	for _, a := range result.NextBestActions {
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "Add Country to Notice")
}

func TestTravelCrossCheckSkipsNonActiveStatuses(t *testing.T) {
	bank := testContext()
	bank.Notice.Status = "Inactive"
	bank.Transactions = append(bank.Transactions, entity.Transaction{
		Date: demoDate(-1), Merchant: "Tokyo Central Market", Location: "Tokyo, Japan",
		Amount: "$85.00", Status: entity.StatusDeclined, Reason: "Unusual activity - possible travel",
	})
	handler := NewHandler(entity.HandlerTravelNotice, bank, nil, "")

	result := handler.Process(context.Background(), "what is the status of my travel notice")

	assert.NotContains(t, result.Response, "Additionally:")
	var titles []string
	for _, a := range result.NextBestActions {
		titles = append(titles, a.Title)
	}
	assert.NotContains(t, titles, "Add Country to Notice")
}
