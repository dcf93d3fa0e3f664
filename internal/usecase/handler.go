package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"support-console/internal/domain/entity"
	"support-console/internal/domain/repository"
)

// Handler is the common capability of the four specialized responders.
type Handler interface {
	Process(ctx context.Context, query string) entity.HandlerResult
}

// NewHandler dispatches a handler kind to its implementation. An unknown kind
// resolves to the General-Inquiry handler, the same fallback the router uses.
// The completion client may be nil, in which case only the rule-based tier
// runs.
func NewHandler(kind entity.HandlerKind, bank *entity.Context, client repository.CompletionClient, model string) Handler {
	tier := newLLMTier(client, model, bank)
	switch kind {
	case entity.HandlerTransactionAnalysis:
		return &TransactionHandler{bank: bank, llm: tier}
	case entity.HandlerTravelNotice:
		return &TravelNoticeHandler{bank: bank, llm: tier}
	case entity.HandlerCardServices:
		return &CardServicesHandler{bank: bank, llm: tier}
	default:
		return &GeneralInquiryHandler{bank: bank, llm: tier}
	}
}

// llmTier is the shared LLM-backed path of the two-tier handler strategy. It
// asks the model for a fenced-JSON {response, next_best_actions, intent}
// object; any transport or parse failure is reported to the caller, which
// falls through to its rule-based tier.
type llmTier struct {
	client repository.CompletionClient
	model  string
	bank   *entity.Context
}

func newLLMTier(client repository.CompletionClient, model string, bank *entity.Context) *llmTier {
	if client == nil || model == "" {
		return nil
	}
	return &llmTier{client: client, model: model, bank: bank}
}

type llmHandlerReply struct {
	Response        string                  `json:"response"`
	NextBestActions []entity.NextBestAction `json:"next_best_actions"`
	Intent          string                  `json:"intent"`
}

// process runs the LLM tier. The boolean result is false when the caller must
// fall back; the fallback reason has already been recorded as an analysis
// step.
func (t *llmTier) process(ctx context.Context, persona, focus, intents, contextStep, query string, rlog *entity.ReasoningLog) (entity.HandlerResult, bool) {
	completion, err := t.client.Complete(ctx, entity.CompletionRequest{
		Messages:    handlerMessages(persona, focus, intents, contextStep, query, t.bank),
		Model:       t.model,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		log.Printf("[HANDLER] %s completion error: %v", rlog.AgentType, err)
		rlog.AddStep("AI error: %v. Switching to rule-based processing", err)
		return entity.HandlerResult{}, false
	}

	var reply llmHandlerReply
	if err := json.Unmarshal([]byte(stripJSONFence(completion.Content)), &reply); err != nil {
		log.Printf("[HANDLER] %s invalid JSON from model: %v", rlog.AgentType, err)
		rlog.AddStep("Invalid JSON from AI: %v. Switching to rule-based processing", err)
		return entity.HandlerResult{}, false
	}

	intent := reply.Intent
	if intent == "" {
		intent = "unknown"
	}
	rlog.SetFactor("ai_detected_intent", intent)
	rlog.AddStep("AI detected intent: %s", intent)
	rlog.SetConstruction("Response generated by AI based on query analysis")
	for _, action := range reply.NextBestActions {
		rlog.AddAction(action)
	}
	rlog.Take("AI Response Generated", "Processed query: "+query)

	return entity.HandlerResult{
		Response:        reply.Response,
		Reasoning:       rlog,
		NextBestActions: rlog.NextBestActions,
		TokensUsed:      completion.TokenCount,
	}, true
}

// stripJSONFence removes a surrounding markdown code fence, if present, and
// trims to the outermost JSON value so lenient parsing can proceed.
func stripJSONFence(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}

// locationVocabulary is the fixed set of place names the rule-based tiers
// recognize, with their normalized display forms.
var locationVocabulary = []string{
	"japan", "tokyo", "osaka",
	"germany", "berlin", "munich",
	"spain", "barcelona", "madrid",
	"france", "paris", "nice",
	"italy", "rome", "milan",
	"usa", "us", "united states",
	"uk", "united kingdom", "london",
}

// countryVocabulary extends the location set with country aliases used by the
// travel-notice handler.
var countryVocabulary = []string{
	"japan", "tokyo", "osaka",
	"germany", "berlin", "munich",
	"spain", "barcelona", "madrid",
	"france", "paris", "nice",
	"italy", "rome", "milan",
	"usa", "us", "united states", "america",
	"uk", "united kingdom", "london", "england", "scotland",
	"canada", "mexico", "australia",
}

// knownCountries maps location substrings to the country a transaction
// happened in, for notice-coverage cross-checks.
var knownCountries = []string{"japan", "germany", "spain", "usa", "france", "italy", "uk"}

func normalizePlace(raw string) string {
	switch raw {
	case "usa", "us", "united states", "america":
		return "USA"
	case "uk", "united kingdom", "england", "scotland":
		return "UK"
	}
	return titleCase(raw)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// extractPlaces returns normalized, de-duplicated place names from the query,
// matched against the given vocabulary at word boundaries.
func extractPlaces(query string, vocabulary []string) []string {
	lower := strings.ToLower(query)
	var places []string
	for _, term := range vocabulary {
		if !wordMentioned(lower, term) {
			continue
		}
		normalized := normalizePlace(term)
		if !containsString(places, normalized) {
			places = append(places, normalized)
		}
	}
	return places
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
