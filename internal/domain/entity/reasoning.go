package entity

import "fmt"

// ConsideredAction is an action the handler weighed but did not take.
type ConsideredAction struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// TakenAction is an action the handler carried out, with details.
type TakenAction struct {
	Action  string `json:"action"`
	Details string `json:"details"`
}

// ReasoningLog is the append-only audit trail of one handler invocation: the
// chain of thought the console renders next to the response.
type ReasoningLog struct {
	AgentType            string             `json:"agent_type"`
	AnalysisSteps        []string           `json:"analysis_steps"`
	DecisionFactors      map[string]any     `json:"decision_factors"`
	ActionsConsidered    []ConsideredAction `json:"actions_considered"`
	ActionsTaken         []TakenAction      `json:"actions_taken"`
	ResponseConstruction string             `json:"response_construction"`
	NextBestActions      []NextBestAction   `json:"next_best_actions"`
}

// NewReasoningLog creates an empty log for the named agent.
func NewReasoningLog(agentType string) *ReasoningLog {
	return &ReasoningLog{
		AgentType:       agentType,
		DecisionFactors: map[string]any{},
	}
}

// AddStep appends a formatted analysis step.
func (l *ReasoningLog) AddStep(format string, args ...any) {
	l.AnalysisSteps = append(l.AnalysisSteps, fmt.Sprintf(format, args...))
}

// SetFactor records a named decision factor.
func (l *ReasoningLog) SetFactor(name string, value any) {
	l.DecisionFactors[name] = value
}

// Consider records an action that was weighed, with the reason it came up.
func (l *ReasoningLog) Consider(action, reason string) {
	l.ActionsConsidered = append(l.ActionsConsidered, ConsideredAction{Action: action, Reason: reason})
}

// Take records an action that was carried out.
func (l *ReasoningLog) Take(action, details string) {
	l.ActionsTaken = append(l.ActionsTaken, TakenAction{Action: action, Details: details})
}

// SetConstruction records the rationale behind the composed response.
func (l *ReasoningLog) SetConstruction(explanation string) {
	l.ResponseConstruction = explanation
}

// AddAction appends a next-best-action recommendation.
func (l *ReasoningLog) AddAction(a NextBestAction) {
	if a.Icon == "" {
		a.Icon = "🔹"
	}
	l.NextBestActions = append(l.NextBestActions, a)
}
