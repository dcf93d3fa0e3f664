package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"support-console/internal/domain/entity"
	"support-console/internal/domain/repository"
)

// Stage identifies a point in the analysis pipeline. Stages are emitted in a
// fixed order so console clients can render incremental progress.
type Stage string

const (
	StageRouting   Stage = "routing"
	StageSentiment Stage = "sentiment"
	StageHandler   Stage = "handler"
	StageActions   Stage = "actions"
	StageNarrative Stage = "narrative"
	StageComplete  Stage = "complete"
)

// ProgressFunc receives the stage just finished and the chain-of-thought text
// accumulated so far. It may be nil.
type ProgressFunc func(stage Stage, chain string)

// ClientFactory builds a completion client bound to a per-turn credential.
// The orchestrator never retains the key beyond the turn.
type ClientFactory func(apiKey, model string) repository.CompletionClient

// AnalysisRequest is one console turn: the agent's query plus the customer
// data bundle and the credential to use for model calls.
type AnalysisRequest struct {
	Query      string          `json:"query"`
	Bank       *entity.Context `json:"context"`
	Model      string          `json:"model"`
	APIKey     string          `json:"-"`
	CustomerID string          `json:"customer_id"`
}

// Orchestrator drives a full analysis turn: routing, sentiment, specialized
// handling, action recommendation and narrative generation. Limiter, embedder,
// cache and judge are optional; a nil dependency disables its feature.
type Orchestrator struct {
	clients  ClientFactory
	limiter  repository.UsageLimiter
	embedder repository.Embedder
	cache    repository.ResponseCache
	judge    repository.MatchJudge
}

// NewOrchestrator wires the pipeline. Any dependency except the client
// factory may be nil.
func NewOrchestrator(clients ClientFactory, limiter repository.UsageLimiter, embedder repository.Embedder, cache repository.ResponseCache, judge repository.MatchJudge) *Orchestrator {
	return &Orchestrator{
		clients:  clients,
		limiter:  limiter,
		embedder: embedder,
		cache:    cache,
		judge:    judge,
	}
}

// similarityThreshold is the vector-distance cutoff for serving a cached
// narrative.
const similarityThreshold = 0.92

// Analyze runs one complete turn. Every model-dependent stage degrades to a
// deterministic default on failure, so the only errors returned are input
// validation and usage-limit refusals.
func (o *Orchestrator) Analyze(ctx context.Context, req AnalysisRequest, progress ProgressFunc) (*entity.AnalysisResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, entity.ErrEmptyQuery
	}
	if req.Bank == nil {
		return nil, entity.ErrInvalidRequest
	}

	if o.limiter != nil && req.CustomerID != "" {
		allowed, err := o.limiter.CheckLimit(ctx, req.CustomerID)
		if err != nil {
			log.Printf("[ORCHESTRATOR] usage limiter unavailable: %v", err)
		} else if !allowed {
			return nil, entity.ErrUsageLimitExceeded
		}
	}

	var client repository.CompletionClient
	if o.clients != nil {
		client = o.clients(req.APIKey, req.Model)
	}

	var chain strings.Builder
	emit := func(stage Stage) {
		if progress != nil {
			progress(stage, chain.String())
		}
	}

	chain.WriteString("Starting analysis of customer service prompt...\n")
	fmt.Fprintf(&chain, "Prompt: %q\n\n", query)

	// Stage 1: routing.
	decision, tokens := NewRouter(client, req.Model).Route(ctx, query, req.Bank)
	log.Printf("[ORCHESTRATOR] routed to %s", decision.SelectedHandler)
	writeRoutingSection(&chain, decision)
	emit(StageRouting)

	// Stage 2: sentiment.
	sentiment, sentimentTokens := o.analyzeSentiment(ctx, client, req.Model, query)
	tokens += sentimentTokens
	writeSentimentSection(&chain, sentiment)
	emit(StageSentiment)

	// Stage 3: specialized handling.
	handler := NewHandler(decision.SelectedHandler, req.Bank, client, req.Model)
	handled := handler.Process(ctx, query)
	tokens += handled.TokensUsed
	writeHandlerSection(&chain, decision.SelectedHandler, handled)
	emit(StageHandler)

	// Stage 4: recommended actions.
	actions, actionTokens := o.recommendActions(ctx, client, req.Model, query, req.Bank, sentiment)
	tokens += actionTokens
	actions = entity.GroupByPriority(append(actions, handled.NextBestActions...))
	writeActionsSection(&chain, actions)
	emit(StageActions)

	// Stage 5: narrative.
	narrative, narrativeTokens := o.generateNarrative(ctx, client, req, query, sentiment)
	tokens += narrativeTokens
	chain.WriteString("=== Detailed Reasoning Analysis ===\n")
	chain.WriteString(narrative)
	chain.WriteString("\n\n")
	emit(StageNarrative)

	chain.WriteString("=== Analysis Complete ===\n")
	fmt.Fprintf(&chain, "Total tokens used: %d\n", tokens)
	emit(StageComplete)

	// The meter records the whole turn, cached narratives included, so the
	// limit reflects what the customer actually consumed.
	if o.limiter != nil && req.CustomerID != "" && tokens > 0 {
		if err := o.limiter.Increment(ctx, req.CustomerID, tokens); err != nil {
			log.Printf("[ORCHESTRATOR] usage increment failed: %v", err)
		}
	}

	return &entity.AnalysisResult{
		Sentiment:          sentiment,
		RecommendedActions: actions,
		Narrative:          narrative,
		Response:           handled.Response,
		Routing:            decision,
		Reasoning:          handled.Reasoning,
		ChainOfThought:     chain.String(),
		TokensUsed:         tokens,
	}, nil
}

func (o *Orchestrator) analyzeSentiment(ctx context.Context, client repository.CompletionClient, model, query string) (entity.SentimentResult, int) {
	if client == nil {
		return entity.NeutralSentiment(), 0
	}
	completion, err := client.Complete(ctx, entity.CompletionRequest{
		Messages:    SentimentMessages(query),
		Model:       model,
		Temperature: 0,
		MaxTokens:   500,
	})
	if err != nil {
		log.Printf("[ORCHESTRATOR] sentiment analysis failed (%s): %v", ClassifyFailure(err), err)
		return entity.NeutralSentiment(), 0
	}

	var result entity.SentimentResult
	if err := json.Unmarshal([]byte(stripJSONFence(completion.Content)), &result); err != nil {
		log.Printf("[ORCHESTRATOR] sentiment response unparseable: %v", err)
		return entity.NeutralSentiment(), completion.TokenCount
	}
	switch result.Sentiment {
	case entity.SentimentPositive, entity.SentimentNegative, entity.SentimentNeutral:
	default:
		result.Sentiment = entity.SentimentNeutral
	}
	if result.Confidence <= 0 || result.Confidence > 1 {
		result.Confidence = 0.5
	}
	return result, completion.TokenCount
}

func (o *Orchestrator) recommendActions(ctx context.Context, client repository.CompletionClient, model, query string, bank *entity.Context, sentiment entity.SentimentResult) ([]entity.NextBestAction, int) {
	if client == nil {
		return []entity.NextBestAction{FollowUpCallAction()}, 0
	}
	completion, err := client.Complete(ctx, entity.CompletionRequest{
		Messages:    ActionMessages(query, bank, sentiment),
		Model:       model,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		log.Printf("[ORCHESTRATOR] action recommendation failed (%s): %v", ClassifyFailure(err), err)
		return []entity.NextBestAction{FollowUpCallAction()}, 0
	}

	var actions []entity.NextBestAction
	if err := json.Unmarshal([]byte(stripJSONFence(completion.Content)), &actions); err != nil {
		log.Printf("[ORCHESTRATOR] action response unparseable: %v", err)
		return []entity.NextBestAction{FollowUpCallAction()}, completion.TokenCount
	}
	if len(actions) == 0 {
		log.Printf("[ORCHESTRATOR] action response contained no actions")
		return []entity.NextBestAction{FollowUpCallAction()}, completion.TokenCount
	}
	for i := range actions {
		if actions[i].Icon == "" {
			actions[i].Icon = "🔹"
		}
	}
	return actions, completion.TokenCount
}

// generateNarrative produces the detailed chain-of-thought narrative, serving
// it from the semantic cache when an equivalent query was answered recently.
func (o *Orchestrator) generateNarrative(ctx context.Context, client repository.CompletionClient, req AnalysisRequest, query string, sentiment entity.SentimentResult) (string, int) {
	var vector []float32
	if o.embedder != nil && o.cache != nil {
		var err error
		vector, err = o.embedder.CreateEmbedding(ctx, query)
		if err != nil {
			log.Printf("[ORCHESTRATOR] embedding failed, skipping cache: %v", err)
			vector = nil
		}
	}

	if vector != nil {
		content, cachedQuery, err := o.cache.Search(ctx, vector, similarityThreshold)
		if err == nil && content != "" {
			if o.judge == nil || o.judge.SameIntent(ctx, query, cachedQuery) {
				log.Printf("[ORCHESTRATOR] narrative served from semantic cache")
				return content, 0
			}
			log.Printf("[ORCHESTRATOR] cache hit rejected: different intent")
		}
	}

	if client == nil {
		return DefaultNarrative(fmt.Errorf("no completion client configured")), 0
	}
	completion, err := client.Complete(ctx, entity.CompletionRequest{
		Messages:    NarrativeMessages(query, req.Bank, sentiment),
		Model:       req.Model,
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		log.Printf("[ORCHESTRATOR] narrative generation failed (%s): %v", ClassifyFailure(err), err)
		return DefaultNarrative(err), 0
	}

	narrative := strings.TrimSpace(completion.Content)
	if narrative == "" {
		return DefaultNarrative(fmt.Errorf("empty narrative response")), completion.TokenCount
	}

	if vector != nil && o.cache != nil {
		go func(q, n string, v []float32) {
			if err := o.cache.Save(context.Background(), q, n, v); err != nil {
				log.Printf("[ORCHESTRATOR] cache save failed: %v", err)
			}
		}(query, narrative, vector)
	}
	return narrative, completion.TokenCount
}

func writeRoutingSection(chain *strings.Builder, decision entity.RoutingDecision) {
	chain.WriteString("=== Routing Agent Analysis ===\n")
	fmt.Fprintf(chain, "Selected agent: %s\n", decision.SelectedHandler)
	fmt.Fprintf(chain, "Confidence: %.2f\n", decision.Confidence[decision.SelectedHandler])
	chain.WriteString("Scoring weights: keyword matches 40%, pattern matches 30%, context relevance 30%\n")

	kinds := entity.AllHandlerKinds()
	for _, kind := range kinds {
		keywords := decision.KeywordMatches[kind]
		patterns := decision.PatternMatches[kind]
		contextScore := decision.ContextScores[kind]
		if len(keywords) == 0 && len(patterns) == 0 && contextScore == 0 {
			continue
		}
		fmt.Fprintf(chain, "- %s: keywords=%v patterns=%v context_score=%d\n", kind, keywords, patterns, contextScore)
	}
	fmt.Fprintf(chain, "Rationale: %s\n", decision.Rationale)
	if decision.AIRationale != "" && decision.AIRationale != decision.Rationale {
		fmt.Fprintf(chain, "AI reasoning: %s\n", decision.AIRationale)
	}
	chain.WriteString("\n")
}

func writeSentimentSection(chain *strings.Builder, sentiment entity.SentimentResult) {
	chain.WriteString("=== Sentiment Analysis ===\n")
	fmt.Fprintf(chain, "Sentiment: %s (confidence %.2f)\n", sentiment.Sentiment, sentiment.Confidence)
	if len(sentiment.Emotions) > 0 {
		fmt.Fprintf(chain, "Emotions: %s\n", strings.Join(sentiment.Emotions, ", "))
	}
	if len(sentiment.KeyPoints) > 0 {
		fmt.Fprintf(chain, "Key points: %s\n", strings.Join(sentiment.KeyPoints, "; "))
	}
	chain.WriteString("\n")
}

func writeHandlerSection(chain *strings.Builder, kind entity.HandlerKind, handled entity.HandlerResult) {
	fmt.Fprintf(chain, "=== %s Processing ===\n", kind)
	rlog := handled.Reasoning
	if rlog != nil {
		for _, step := range rlog.AnalysisSteps {
			fmt.Fprintf(chain, "- %s\n", step)
		}
		if len(rlog.DecisionFactors) > 0 {
			names := make([]string, 0, len(rlog.DecisionFactors))
			for name := range rlog.DecisionFactors {
				names = append(names, name)
			}
			sort.Strings(names)
			chain.WriteString("Decision factors:\n")
			for _, name := range names {
				fmt.Fprintf(chain, "  %s: %v\n", name, rlog.DecisionFactors[name])
			}
		}
		for _, considered := range rlog.ActionsConsidered {
			fmt.Fprintf(chain, "Considered: %s (%s)\n", considered.Action, considered.Reason)
		}
		for _, taken := range rlog.ActionsTaken {
			fmt.Fprintf(chain, "Taken: %s (%s)\n", taken.Action, taken.Details)
		}
		if rlog.ResponseConstruction != "" {
			fmt.Fprintf(chain, "Response construction: %s\n", rlog.ResponseConstruction)
		}
	}
	chain.WriteString("\n")
}

func writeActionsSection(chain *strings.Builder, actions []entity.NextBestAction) {
	chain.WriteString("=== Action Recommendation ===\n")
	for _, action := range actions {
		fmt.Fprintf(chain, "- [%s] %s: %s\n", action.Priority, action.Title, action.Description)
	}
	chain.WriteString("\n")
}
