package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"support-console/internal/domain/entity"
)

// GeneralInquiryHandler answers balance, contact-preference and account
// overview questions. It is also the universal fallback when routing fails,
// so it must produce a useful reply for any query at all.
type GeneralInquiryHandler struct {
	bank *entity.Context
	llm  *llmTier
}

var (
	balanceInquiryRe  = regexp.MustCompile(`(?i)\b(balance|how much.*in my account|funds available|account total)\b`)
	contactPrefRe     = regexp.MustCompile(`(?i)\b(contact|email|phone|text|sms|notification|preferences|how.*contact me)\b`)
	overviewRe        = regexp.MustCompile(`(?i)\b(overview|summary|account details|my account|information.*account)\b`)
	overviewExcludeRe = regexp.MustCompile(`(?i)\b(balance|contact|travel|transaction|card)\b`)
)

// Process runs the two-tier strategy for general account inquiries.
func (h *GeneralInquiryHandler) Process(ctx context.Context, query string) entity.HandlerResult {
	rlog := entity.NewReasoningLog(string(entity.HandlerGeneralInquiry))
	rlog.AddStep("Initializing GeneralInquiryAgent")
	rlog.AddStep("Received user prompt: '%s'", query)

	if h.llm != nil {
		rlog.AddStep("Using AI for general inquiry processing")
		if result, ok := h.llm.process(ctx,
			"general banking support agent",
			"about their account",
			"answer balance questions, explain contact preferences, give an account overview, offer general help",
			"Review the customer profile for account standing, preferences and anything that needs attention.",
			query, rlog); ok {
			return result
		}
	}
	return h.processRuleBased(query, rlog)
}

func (h *GeneralInquiryHandler) processRuleBased(query string, rlog *entity.ReasoningLog) entity.HandlerResult {
	rlog.AddStep("Using rule-based general inquiry processing")

	inquiryType := h.determineInquiryType(query, rlog)
	rlog.SetFactor("inquiry_type", inquiryType)
	rlog.AddStep("Determined inquiry type: %s", inquiryType)

	summary := h.gatherAccountSummary()
	rlog.SetFactor("account_summary", summary)
	rlog.AddStep("Gathered account summary for context.")

	var response string
	switch inquiryType {
	case "balance_inquiry":
		response = h.balanceInquiry(rlog)
	case "contact_preferences":
		response = h.contactPreferences(rlog)
	case "account_overview":
		response = h.accountOverview(summary, rlog)
	default:
		response = h.generalHelp(summary, rlog)
	}

	return entity.HandlerResult{
		Response:        strings.TrimSpace(response),
		Reasoning:       rlog,
		NextBestActions: rlog.NextBestActions,
	}
}

func (h *GeneralInquiryHandler) balanceInquiry(rlog *entity.ReasoningLog) string {
	rlog.AddStep("Handling 'balance_inquiry' type.")
	rlog.Consider("Report account balance", "User asked about their balance or available funds.")

	balance := h.bank.Customer.AverageBalance
	if balance == "" {
		balance = "unavailable right now"
	}
	rlog.Take("Balance Report", fmt.Sprintf("Reported average balance: %s.", balance))
	rlog.SetConstruction("Reporting the account balance with a transparency note about averages.")
	rlog.AddAction(entity.NextBestAction{
		Title: "Offer Balance Alerts", Priority: entity.PriorityLow,
		Description: "Offer to set up low-balance or large-transaction alerts.",
		Category:    "Account Management", Icon: "🔔",
	})
	return fmt.Sprintf("Your %s account shows an average balance of %s. For the exact current balance I'd need to pull up your live account view. Would you like alerts whenever your balance changes significantly?",
		orDefault(h.bank.Customer.AccountType, "bank"), balance)
}

func (h *GeneralInquiryHandler) contactPreferences(rlog *entity.ReasoningLog) string {
	rlog.AddStep("Handling 'contact_preferences' type.")
	rlog.Consider("Report and offer to update contact preferences", "User asked how we contact them.")

	customer := h.bank.Customer
	preference := orDefault(customer.ContactPreference, "not set")
	rlog.Take("Contact Preferences Report", fmt.Sprintf("Reported preference: %s.", preference))
	rlog.SetConstruction("Listing the contact details on file and offering to update them.")
	rlog.AddAction(entity.NextBestAction{
		Title: "Update Contact Preferences", Priority: entity.PriorityMedium,
		Description: "Offer to change the customer's preferred contact channel or details.",
		Category:    "Account Management", Icon: "✏️",
	})

	response := fmt.Sprintf("Your preferred contact method is currently set to: %s.", preference)
	if customer.Email != "" {
		response += fmt.Sprintf("\n- Email on file: %s", customer.Email)
	}
	if customer.Phone != "" {
		response += fmt.Sprintf("\n- Phone on file: %s", customer.Phone)
	}
	response += "\nWould you like to update any of these?"
	return response
}

func (h *GeneralInquiryHandler) accountOverview(summary map[string]any, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Handling 'account_overview' type.")
	rlog.Consider("Summarize account standing", "User asked for an account overview or summary.")

	customer := h.bank.Customer
	rlog.Take("Account Overview", "Summarized account type, tenure, card and standing.")
	rlog.SetConstruction("Presenting a short account summary and flagging anything that needs attention.")

	response := fmt.Sprintf("Here's a quick overview of your account, %s:", orDefault(customer.Name, "there"))
	response += fmt.Sprintf("\n- Account: %s (opened %s)", orDefault(customer.AccountType, "bank"), orDefault(customer.AccountOpened, "N/A"))
	response += fmt.Sprintf("\n- Card: %s ending in %s", orDefault(customer.CardType, "card"), orDefault(customer.CardLastFour, "N/A"))
	if customer.CreditScore > 0 {
		response += fmt.Sprintf("\n- Credit score: %d", customer.CreditScore)
	}
	if customer.AverageBalance != "" {
		response += fmt.Sprintf("\n- Average balance: %s", customer.AverageBalance)
	}

	var flagged bool
	if summary["has_declined_transactions"] == true {
		response += "\n\nOne thing to flag: you have recent declined transactions."
		rlog.AddAction(entity.NextBestAction{
			Title: "Review Declined Transactions", Priority: entity.PriorityMedium,
			Description: "Walk through the recent declined transactions and their causes.",
			Category:    "Account Management", Icon: "🔍",
		})
		flagged = true
	}
	if summary["has_travel_notice_issue"] == true {
		if flagged {
			response += " Your travel notice also has an activation problem."
		} else {
			response += "\n\nOne thing to flag: your travel notice has an activation problem."
		}
		rlog.AddAction(entity.NextBestAction{
			Title: "Check Travel Notice Status", Priority: entity.PriorityHigh,
			Description: "Investigate and fix the travel notice activation problem.",
			Category:    "Travel Services", Icon: "✈️",
		})
		flagged = true
	}
	if !flagged {
		response += "\n\nEverything looks to be in good standing."
		rlog.AddAction(entity.NextBestAction{
			Title: "Review Account Security", Priority: entity.PriorityLow,
			Description: "Offer a routine security review of the account settings.",
			Category:    "Security", Icon: "🔒",
		})
	}

	if customer.EligibleForUpgrade {
		response += " You're also eligible for a card upgrade if you're interested."
		rlog.AddAction(entity.NextBestAction{
			Title: "Discuss Card Upgrade", Priority: entity.PriorityLow,
			Description: "Customer is upgrade-eligible; offer details on the upgrade options.",
			Category:    "Account Management", Icon: "⭐",
		})
	}
	return response
}

func (h *GeneralInquiryHandler) generalHelp(summary map[string]any, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Handling 'general_help' type.")
	rlog.Consider("Offer assistance menu", "Request did not match a specific inquiry type.")
	rlog.Take("General Help Offered", "Listed the areas the assistant can help with.")
	rlog.SetConstruction("Offering a helpful menu of support areas, surfacing known issues first.")

	response := fmt.Sprintf("Hi %s! I can help with your balance, account details, contact preferences, card services, transactions, or travel notices.",
		orDefault(h.bank.Customer.Name, "there"))

	if summary["has_travel_notice_issue"] == true {
		response += " I also noticed your travel notice has an activation problem; want me to look at that first?"
		rlog.AddAction(entity.NextBestAction{
			Title: "Check Travel Notice Status", Priority: entity.PriorityHigh,
			Description: "Investigate and fix the travel notice activation problem.",
			Category:    "Travel Services", Icon: "✈️",
		})
	} else if summary["has_declined_transactions"] == true {
		response += " I also noticed some recent declined transactions; want me to look into those?"
		rlog.AddAction(entity.NextBestAction{
			Title: "Review Declined Transactions", Priority: entity.PriorityMedium,
			Description: "Walk through the recent declined transactions and their causes.",
			Category:    "Account Management", Icon: "🔍",
		})
	} else {
		rlog.AddAction(entity.NextBestAction{
			Title: "Clarify Request", Priority: entity.PriorityMedium,
			Description: "Ask the customer what they need help with today.",
			Category:    "Customer Support", Icon: "❓",
		})
	}
	return response
}

// determineInquiryType classifies the query by keyword precedence:
// balance > contact preferences > account overview > general help.
func (h *GeneralInquiryHandler) determineInquiryType(query string, rlog *entity.ReasoningLog) string {
	lower := strings.ToLower(query)

	if balanceInquiryRe.MatchString(lower) {
		rlog.AddStep("Detected keywords about account balance.")
		return "balance_inquiry"
	}
	if contactPrefRe.MatchString(lower) &&
		!strings.Contains(lower, "travel notice") && !strings.Contains(lower, "transaction") {
		rlog.AddStep("Detected keywords about contact preferences.")
		return "contact_preferences"
	}
	if overviewRe.MatchString(lower) && !overviewExcludeRe.MatchString(lower) {
		rlog.AddStep("Detected keywords asking for an account overview.")
		return "account_overview"
	}
	rlog.AddStep("No specific inquiry keywords found. Offering general help.")
	return "general_help"
}

// gatherAccountSummary collects the signals worth surfacing proactively.
func (h *GeneralInquiryHandler) gatherAccountSummary() map[string]any {
	cardStatus := "active"
	for _, tx := range h.bank.Transactions {
		reason := strings.ToLower(tx.Reason)
		if strings.Contains(reason, "card reported lost") || strings.Contains(reason, "stolen") {
			cardStatus = "reported lost"
			break
		}
	}
	return map[string]any{
		"account_type":              h.bank.Customer.AccountType,
		"card_type":                 h.bank.Customer.CardType,
		"card_status":               cardStatus,
		"contact_preference":        h.bank.Customer.ContactPreference,
		"eligible_for_upgrade":      h.bank.Customer.EligibleForUpgrade,
		"has_declined_transactions": len(h.bank.DeclinedTransactions()) > 0,
		"has_travel_notice_issue":   h.bank.NoticeHasIssue(),
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
