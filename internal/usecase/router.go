package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"support-console/internal/domain/entity"
	"support-console/internal/domain/repository"
)

// Router assigns a customer query to exactly one of the four specialized
// handlers. It combines deterministic heuristics, recorded for audit, with a
// single completion call that makes the actual pick. Every failure class
// falls back to General-Inquiry so the orchestrator always receives a known
// handler identity, never an error.
type Router struct {
	client repository.CompletionClient
	model  string
}

// NewRouter creates a router over the given completion capability.
func NewRouter(client repository.CompletionClient, model string) *Router {
	return &Router{client: client, model: model}
}

// routeReply is the JSON object the routing prompt asks the model for.
// Confidence is lenient: a missing value defaults to 0.5.
type routeReply struct {
	Agent      string   `json:"agent"`
	Reasoning  string   `json:"reasoning"`
	Confidence *float64 `json:"confidence"`
}

// Route analyzes the query and returns a complete routing decision plus the
// tokens the routing call consumed. It never blocks longer than one
// completion call and never returns an error.
func (r *Router) Route(ctx context.Context, query string, bank *entity.Context) (entity.RoutingDecision, int) {
	heur := ScoreQuery(query, bank)
	decision := entity.RoutingDecision{
		InputQuery:     query,
		KeywordMatches: heur.KeywordMatches,
		PatternMatches: heur.PatternMatches,
		ContextScores:  heur.ContextScores,
		Confidence:     zeroConfidence(),
	}

	content, tokens, err := r.complete(ctx, query, bank)
	if err != nil {
		log.Printf("[ROUTER] completion error: %v", err)
		decision.SelectedHandler = entity.HandlerGeneralInquiry
		decision.Confidence[entity.HandlerGeneralInquiry] = 0.5
		decision.Rationale = fmt.Sprintf("Error in AI routing: %v. Defaulting to GeneralInquiryAgent.", err)
		return decision, tokens
	}

	var reply routeReply
	if err := json.Unmarshal([]byte(stripJSONFence(content)), &reply); err != nil {
		log.Printf("[ROUTER] invalid JSON from model: %v", err)
		decision.SelectedHandler = entity.HandlerGeneralInquiry
		decision.Confidence[entity.HandlerGeneralInquiry] = 0.5
		decision.Rationale = "Error parsing AI response. Defaulting to GeneralInquiryAgent."
		decision.AIRationale = content
		return decision, tokens
	}

	reasoning := reply.Reasoning
	if reasoning == "" {
		reasoning = "No reasoning provided by AI."
	}
	confidence := 0.5
	if reply.Confidence != nil {
		confidence = *reply.Confidence
	}

	selected, known := entity.ParseHandlerKind(reply.Agent)
	if !known {
		log.Printf("[ROUTER] unknown agent %q selected by model", reply.Agent)
		reasoning = fmt.Sprintf("Invalid agent selected by AI. Defaulting to GeneralInquiryAgent. Original reasoning: %s", reasoning)
		confidence = 0.5
	}

	decision.SelectedHandler = selected
	decision.Confidence[selected] = confidence
	decision.Rationale = fmt.Sprintf("AI selected %s. Reasoning: %s", selected, reasoning)
	decision.AIRationale = reasoning
	return decision, tokens
}

func (r *Router) complete(ctx context.Context, query string, bank *entity.Context) (string, int, error) {
	if r.client == nil {
		return "", 0, fmt.Errorf("no completion client configured")
	}
	completion, err := r.client.Complete(ctx, entity.CompletionRequest{
		Messages:    RoutingMessages(query, bank),
		Model:       r.model,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", 0, err
	}
	return completion.Content, completion.TokenCount, nil
}

func zeroConfidence() map[entity.HandlerKind]float64 {
	scores := make(map[entity.HandlerKind]float64, 4)
	for _, k := range entity.AllHandlerKinds() {
		scores[k] = 0.0
	}
	return scores
}
