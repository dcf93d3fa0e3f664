package usecase

import (
	"strings"

	"support-console/internal/domain/entity"
)

// FailureKind buckets completion failures for logging. The bucket never
// changes the fallback behavior, every failure degrades to the same
// deterministic defaults in a single pass, but it makes the audit trail
// tell the operator what actually went wrong.
type FailureKind string

const (
	FailureNetwork     FailureKind = "network"
	FailureAuth        FailureKind = "auth"
	FailureRateLimited FailureKind = "rate_limited"
	FailureMalformed   FailureKind = "malformed_response"
	FailureUnknown     FailureKind = "unknown"
)

// ClassifyFailure maps a completion error onto a FailureKind by inspecting
// the error text, since provider SDKs rarely expose typed errors for these.
func ClassifyFailure(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "permission"):
		return FailureAuth
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota") || strings.Contains(msg, "resource exhausted"):
		return FailureRateLimited
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline") ||
		strings.Contains(msg, "connection") || strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "eof") || strings.Contains(msg, "refused") ||
		strings.Contains(msg, "500") || strings.Contains(msg, "502") ||
		strings.Contains(msg, "503"):
		return FailureNetwork
	case strings.Contains(msg, "unmarshal") || strings.Contains(msg, "invalid character") ||
		strings.Contains(msg, "unexpected end of json") || strings.Contains(msg, "parse"):
		return FailureMalformed
	default:
		return FailureUnknown
	}
}

// FollowUpCallAction is the single recommended action emitted when the
// action-recommendation stage fails.
func FollowUpCallAction() entity.NextBestAction {
	return entity.NextBestAction{
		Title:       "Follow-up Call",
		Priority:    entity.PriorityHigh,
		Description: "Schedule a follow-up call to address the issue manually.",
		Category:    "Customer Support",
		Icon:        "📞",
	}
}

// DefaultNarrative is the placeholder summary used when narrative generation
// fails. The agent-facing text still names the failure so the console shows
// something actionable.
func DefaultNarrative(err error) string {
	return "Summary generation is temporarily unavailable (" + string(ClassifyFailure(err)) +
		"). Please review the detailed analysis and reasoning log directly."
}
