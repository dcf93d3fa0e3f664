package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"support-console/internal/domain/entity"
)

func TestGeneralBalanceInquiry(t *testing.T) {
	handler := NewHandler(entity.HandlerGeneralInquiry, testContext(), nil, "")

	result := handler.Process(context.Background(), "what is my balance?")

	assert.Contains(t, result.Response, "$12,450")
	assert.Equal(t, "balance_inquiry", result.Reasoning.DecisionFactors["inquiry_type"])
}

func TestGeneralContactPreferences(t *testing.T) {
	handler := NewHandler(entity.HandlerGeneralInquiry, testContext(), nil, "")

	result := handler.Process(context.Background(), "how do you contact me about my account?")

	assert.Contains(t, result.Response, "email")
	assert.Contains(t, result.Response, "priya.sharma@example.com")
}

func TestGeneralContactExcludedByTravelNoticeMention(t *testing.T) {
	handler := NewHandler(entity.HandlerGeneralInquiry, testContext(), nil, "")

	result := handler.Process(context.Background(), "did you email me about my travel notice?")

	assert.NotEqual(t, "contact_preferences", result.Reasoning.DecisionFactors["inquiry_type"])
}

func TestGeneralAccountOverviewFlagsKnownIssues(t *testing.T) {
	handler := NewHandler(entity.HandlerGeneralInquiry, testContext(), nil, "")

	result := handler.Process(context.Background(), "give me an overview please")

	assert.Equal(t, "account_overview", result.Reasoning.DecisionFactors["inquiry_type"])
	assert.Contains(t, result.Response, "declined transactions")
	assert.Contains(t, result.Response, "activation problem")

	var titles []string
	for _, a := range result.NextBestActions {
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "Check Travel Notice Status")
}

func TestGeneralOverviewRejectedWhenSpecificTopicPresent(t *testing.T) {
	handler := NewHandler(entity.HandlerGeneralInquiry, testContext(), nil, "")

	result := handler.Process(context.Background(), "give me an overview of my card")

	assert.NotEqual(t, "account_overview", result.Reasoning.DecisionFactors["inquiry_type"])
}

func TestGeneralHelpSurfacesTravelNoticeIssueFirst(t *testing.T) {
	handler := NewHandler(entity.HandlerGeneralInquiry, testContext(), nil, "")

	result := handler.Process(context.Background(), "hello, I need some assistance")

	assert.Equal(t, "general_help", result.Reasoning.DecisionFactors["inquiry_type"])
	assert.Contains(t, result.Response, "travel notice has an activation problem")
}

func TestGeneralHelpCleanAccount(t *testing.T) {
	bank := testContext()
	bank.Notice = nil
	bank.Transactions = nil
	handler := NewHandler(entity.HandlerGeneralInquiry, bank, nil, "")

	result := handler.Process(context.Background(), "hi there")

	assert.Contains(t, result.Response, "Hi Priya Sharma!")
	var titles []string
	for _, a := range result.NextBestActions {
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "Clarify Request")
}
