package entity

// HandlerKind identifies one of the four specialized handlers. The set is
// closed: anything outside it resolves to HandlerGeneralInquiry.
type HandlerKind string

const (
	HandlerTravelNotice        HandlerKind = "TravelNoticeAgent"
	HandlerTransactionAnalysis HandlerKind = "TransactionAnalysisAgent"
	HandlerCardServices        HandlerKind = "CardServicesAgent"
	HandlerGeneralInquiry      HandlerKind = "GeneralInquiryAgent"
)

// AllHandlerKinds returns the four handler identities in routing order.
func AllHandlerKinds() []HandlerKind {
	return []HandlerKind{
		HandlerTravelNotice,
		HandlerTransactionAnalysis,
		HandlerCardServices,
		HandlerGeneralInquiry,
	}
}

// ParseHandlerKind maps a free-form name onto a known handler kind.
func ParseHandlerKind(name string) (HandlerKind, bool) {
	for _, kind := range AllHandlerKinds() {
		if string(kind) == name {
			return kind, true
		}
	}
	return HandlerGeneralInquiry, false
}

// Priority ranks a recommended action for the human agent.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// NextBestAction is a recommended follow-up task surfaced to a human agent.
// Icon is a display hint that non-UI consumers may ignore.
type NextBestAction struct {
	Title       string   `json:"action"`
	Priority    Priority `json:"priority"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Icon        string   `json:"icon,omitempty"`
}

// GroupByPriority orders actions High, Medium, Low, preserving the relative
// order within each band.
func GroupByPriority(actions []NextBestAction) []NextBestAction {
	grouped := make([]NextBestAction, 0, len(actions))
	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		for _, a := range actions {
			if a.Priority == p {
				grouped = append(grouped, a)
			}
		}
	}
	// Unknown priorities go last rather than disappearing.
	for _, a := range actions {
		if a.Priority != PriorityHigh && a.Priority != PriorityMedium && a.Priority != PriorityLow {
			grouped = append(grouped, a)
		}
	}
	return grouped
}

// SentimentLabel classifies the overall tone of a customer message.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// SentimentResult is the model's read of the customer message.
type SentimentResult struct {
	Sentiment  SentimentLabel `json:"sentiment"`
	Confidence float64        `json:"confidence"`
	Emotions   []string       `json:"emotions"`
	KeyPoints  []string       `json:"key_points"`
}

// NeutralSentiment is the deterministic default used when sentiment analysis
// fails for any reason.
func NeutralSentiment() SentimentResult {
	return SentimentResult{
		Sentiment:  SentimentNeutral,
		Confidence: 0.5,
		Emotions:   []string{},
		KeyPoints:  []string{},
	}
}

// RoutingDecision is the router's structured record of how a query was
// assigned to a handler. Heuristic output is kept even when the model call
// overrides it, so the decision stays auditable.
type RoutingDecision struct {
	InputQuery      string                   `json:"input_query"`
	SelectedHandler HandlerKind              `json:"selected_handler"`
	Confidence      map[HandlerKind]float64  `json:"confidence_scores"`
	KeywordMatches  map[HandlerKind][]string `json:"keyword_matches"`
	PatternMatches  map[HandlerKind][]string `json:"pattern_matches"`
	ContextScores   map[HandlerKind]int      `json:"context_scores"`
	Rationale       string                   `json:"rationale"`
	AIRationale     string                   `json:"ai_rationale,omitempty"`
}

// HandlerResult is what a specialized handler produces for one query.
// TokensUsed is zero when the rule-based tier answered.
type HandlerResult struct {
	Response        string           `json:"response"`
	Reasoning       *ReasoningLog    `json:"reasoning_log"`
	NextBestActions []NextBestAction `json:"next_best_actions"`
	TokensUsed      int              `json:"tokens_used,omitempty"`
}

// AnalysisResult is the final output of one console turn.
type AnalysisResult struct {
	Sentiment          SentimentResult  `json:"sentiment"`
	RecommendedActions []NextBestAction `json:"recommended_actions"`
	Narrative          string           `json:"narrative"`
	Response           string           `json:"response"`
	Routing            RoutingDecision  `json:"routing_decision"`
	Reasoning          *ReasoningLog    `json:"reasoning_log"`
	ChainOfThought     string           `json:"chain_of_thought"`
	TokensUsed         int              `json:"tokens_used"`
}

// Message is one role-tagged entry in a completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// CompletionRequest is a single exchange with the text-generation capability.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Completion is the generated text plus usage accounting.
type Completion struct {
	Content    string `json:"content"`
	TokenCount int    `json:"token_count"`
	Model      string `json:"model,omitempty"`
}
