package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"support-console/internal/domain/entity"
)

// TransactionHandler answers questions about specific transactions, payments,
// and declines.
type TransactionHandler struct {
	bank *entity.Context
	llm  *llmTier
}

var (
	declineFocusRe      = regexp.MustCompile(`(?i)\b(decline[d]?|denied|rejected|failed)\b`)
	generalTxQueryRe    = regexp.MustCompile(`(?i)\b(transaction[s]?|purchase[s]?|charge[s]?|payment[s]?)\b`)
	merchantVocabulary  = []string{
		"starbucks", "tokyo central", "market", "uber", "lyft", "la casa",
		"tapas", "amazon", "marketplace", "target", "walmart", "cvs",
		"walgreens", "best buy", "home depot", "costco", "safeway",
		"whole foods",
		"delta", "united airlines", "marriott", "hilton", "ebay",
	}
)

// Process runs the two-tier strategy for transaction analysis.
func (h *TransactionHandler) Process(ctx context.Context, query string) entity.HandlerResult {
	rlog := entity.NewReasoningLog(string(entity.HandlerTransactionAnalysis))
	rlog.AddStep("Initializing TransactionAnalysisAgent")
	rlog.AddStep("Received user prompt: '%s'", query)

	if h.llm != nil {
		rlog.AddStep("Using AI for transaction analysis")
		if result, ok := h.llm.process(ctx,
			"banking transaction analysis agent",
			"about their transactions",
			"check declined transaction, review recent purchases",
			"Examine the recent transactions and travel notices for relevant details (e.g., declines, locations).",
			query, rlog); ok {
			return result
		}
	}
	return h.processRuleBased(query, rlog)
}

func (h *TransactionHandler) processRuleBased(query string, rlog *entity.ReasoningLog) entity.HandlerResult {
	rlog.AddStep("Using rule-based transaction analysis")
	rlog.AddStep("Identifying specific transaction details (locations, merchants) mentioned in the query")

	mentionedLocations := extractPlaces(query, locationVocabulary)
	mentionedMerchants := extractMerchants(query)
	mentionedExplicitly := len(mentionedLocations) > 0 || len(mentionedMerchants) > 0

	rlog.SetFactor("mentioned_locations", mentionedLocations)
	rlog.SetFactor("mentioned_merchants", mentionedMerchants)
	rlog.SetFactor("user_mentioned_specific_transaction", mentionedExplicitly)

	rlog.AddStep("Searching for relevant transactions in recent customer history")
	var relevant []entity.Transaction
	if mentionedExplicitly {
		for _, tx := range h.bank.Transactions {
			if matchesAny(tx.Location, mentionedLocations) || matchesAny(tx.Merchant, mentionedMerchants) {
				relevant = append(relevant, tx)
			}
		}
		rlog.AddStep("Found %d transactions matching explicit mentions.", len(relevant))
	}

	declineFocused := declineFocusRe.MatchString(query)
	generalTxQuery := generalTxQueryRe.MatchString(query) && !mentionedExplicitly

	if len(relevant) == 0 && declineFocused {
		rlog.AddStep("No specific transaction match found, but user mentioned 'declined'. Searching for all recent declined transactions.")
		relevant = h.bank.DeclinedTransactions()
		rlog.SetFactor("search_mode", "all_declined")
		rlog.AddStep("Found %d declined transactions.", len(relevant))
	}

	if len(relevant) == 0 && generalTxQuery && !declineFocused {
		rlog.AddStep("No specific or declined transactions found, but query mentions transactions generally. Fetching last 3 transactions.")
		if len(h.bank.Transactions) > 3 {
			relevant = h.bank.Transactions[:3]
		} else {
			relevant = h.bank.Transactions
		}
		rlog.SetFactor("search_mode", "last_3_general")
		rlog.AddStep("Showing the %d most recent transactions.", len(relevant))
	}

	rlog.SetFactor("relevant_transactions_identified", relevant)

	var declined []entity.Transaction
	for _, tx := range relevant {
		if tx.Declined() {
			declined = append(declined, tx)
		}
	}
	rlog.SetFactor("declined_transactions_analyzed", declined)

	var response string
	switch {
	case len(declined) == 1:
		response = h.explainSingleDecline(declined[0], rlog)
	case len(declined) > 1:
		response = h.summarizeDeclines(declined, rlog)
	case len(relevant) > 0:
		response = h.describeMatches(relevant, rlog)
	default:
		response = h.nothingFound(declineFocused, rlog)
	}

	return entity.HandlerResult{
		Response:        strings.TrimSpace(response),
		Reasoning:       rlog,
		NextBestActions: rlog.NextBestActions,
	}
}

// explainSingleDecline branches on the decline reason to produce a tailored
// explanation and 1-3 next-best actions.
func (h *TransactionHandler) explainSingleDecline(tx entity.Transaction, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Analyzing reasons for identified declined transactions")
	rlog.Consider(
		fmt.Sprintf("Explain declined transaction: %s at %s", tx.Amount, tx.Merchant),
		fmt.Sprintf("Transaction declined on %s due to: %s", tx.Date, tx.Reason),
	)
	rlog.SetConstruction("Building response focused on explaining declined transactions and offering solutions")
	rlog.Take(
		"Transaction Explanation Provided",
		fmt.Sprintf("Explained single declined transaction: %s at %s (Reason: %s)", tx.Amount, tx.Merchant, tx.Reason),
	)

	response := fmt.Sprintf("I looked into the transaction you mentioned. The purchase of %s at %s in %s on %s was declined because '%s'.",
		tx.Amount, tx.Merchant, tx.Location, tx.Date, tx.Reason)

	reason := strings.ToLower(tx.Reason)
	switch {
	case strings.Contains(reason, "insufficient funds"):
		response += " This often happens if the account balance wasn't enough at the moment of the purchase."
		rlog.AddAction(entity.NextBestAction{
			Title: "Set Balance Alerts", Priority: entity.PriorityMedium,
			Description: "Suggest setting up low balance alerts to help avoid this in the future.",
			Category:    "Account Management", Icon: "💰",
		})
		rlog.AddAction(entity.NextBestAction{
			Title: "Check Available Balance", Priority: entity.PriorityMedium,
			Description: "Offer to check the current available balance.",
			Category:    "Account Management", Icon: "📊",
		})

	case strings.Contains(reason, "card reported lost"):
		response += " This was because the card used was marked as lost or stolen in our system. If you have found this card, we need to reactivate it or issue a new one."
		rlog.AddAction(entity.NextBestAction{
			Title: "Review Card Status", Priority: entity.PriorityHigh,
			Description: "Verify if the customer's card needs reactivation or replacement.",
			Category:    "Card Services", Icon: "💳",
		})
		rlog.AddAction(entity.NextBestAction{
			Title: "Issue Replacement Card", Priority: entity.PriorityHigh,
			Description: "Offer to immediately issue a replacement card.",
			Category:    "Card Services", Icon: "🆕",
		})

	case strings.Contains(reason, "incorrect pin") || strings.Contains(reason, "pin attempts exceeded"):
		response += " The decline was due to an incorrect PIN entry. If you've forgotten your PIN, I can help you reset it."
		rlog.AddAction(entity.NextBestAction{
			Title: "Reset PIN", Priority: entity.PriorityHigh,
			Description: "Offer to guide the customer through the PIN reset process.",
			Category:    "Card Services", Icon: "🔑",
		})

	case strings.Contains(reason, "travel notice") || strings.Contains(reason, "unusual activity") || strings.Contains(reason, "security block"):
		response += h.explainSecurityDecline(tx, rlog)

	default:
		response += " There might be a few reasons why this could happen."
		rlog.AddAction(entity.NextBestAction{
			Title: "Detailed Transaction Review", Priority: entity.PriorityMedium,
			Description: "Offer to investigate the specific reason for this decline further.",
			Category:    "Account Management", Icon: "ℹ️",
		})
	}
	return response
}

func (h *TransactionHandler) explainSecurityDecline(tx entity.Transaction, rlog *entity.ReasoningLog) string {
	location := strings.ToLower(tx.Location)
	international := false
	for _, country := range []string{"japan", "germany", "spain", "france", "italy"} {
		if strings.Contains(location, country) {
			international = true
			break
		}
	}

	if !international {
		rlog.AddAction(entity.NextBestAction{
			Title: "Verify Transaction", Priority: entity.PriorityHigh,
			Description: "Ask the customer to confirm if the flagged transaction was legitimate.",
			Category:    "Security", Icon: "✅",
		})
		rlog.AddAction(entity.NextBestAction{
			Title: "Review Recent Activity", Priority: entity.PriorityMedium,
			Description: "Offer to review other recent transactions for any unrecognized activity.",
			Category:    "Security", Icon: "🛡️",
		})
		return " The transaction was flagged due to unusual activity patterns for security reasons. Verifying the transaction can help prevent future issues."
	}

	response := fmt.Sprintf(" This decline appears to be related to international usage in %s. Often, setting a travel notice helps prevent this.", tx.Location)

	covered := false
	if h.bank.Notice != nil {
		for _, country := range h.bank.Notice.Countries {
			if strings.Contains(location, strings.ToLower(country)) {
				covered = true
				break
			}
		}
	}

	if h.bank.Notice == nil || !covered {
		response += " I don't see an active travel notice covering this location."
		rlog.AddAction(entity.NextBestAction{
			Title: "Create/Update Travel Notice", Priority: entity.PriorityHigh,
			Description: fmt.Sprintf("Offer to set up or update a travel notice to include %s.", tx.Location),
			Category:    "Travel Services", Icon: "✈️",
		})
	} else {
		response += " Although you have a travel notice, the transaction was still flagged. Let's review the details to ensure everything is set correctly."
		rlog.AddAction(entity.NextBestAction{
			Title: "Review Travel Notice Details", Priority: entity.PriorityMedium,
			Description: "Verify the dates and countries on the existing travel notice.",
			Category:    "Travel Services", Icon: "🔍",
		})
	}
	return response
}

// summarizeDeclines lists multiple declines rather than narrating each; past
// three entries it notes "and possibly others".
func (h *TransactionHandler) summarizeDeclines(declined []entity.Transaction, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Analyzing reasons for identified declined transactions")
	for _, tx := range declined {
		rlog.Consider(
			fmt.Sprintf("Explain declined transaction: %s at %s", tx.Amount, tx.Merchant),
			fmt.Sprintf("Transaction declined on %s due to: %s", tx.Date, tx.Reason),
		)
	}
	rlog.SetConstruction("Building response focused on explaining declined transactions and offering solutions")
	rlog.Take(
		"Multiple Declined Transactions Summarized",
		fmt.Sprintf("Summarized %d declined transactions.", len(declined)),
	)

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d recently declined transactions matching your query:\n", len(declined))
	for i, tx := range declined {
		if i == 3 {
			b.WriteString("- ... and possibly others.\n")
			break
		}
		fmt.Fprintf(&b, "- %s: %s at %s in %s (Reason: %s)\n", tx.Date, tx.Amount, tx.Merchant, tx.Location, tx.Reason)
	}
	b.WriteString("\nWould you like me to go over these declines in more detail, or perhaps look into a specific one?")

	rlog.AddAction(entity.NextBestAction{
		Title: "Review All Declined Transactions", Priority: entity.PriorityMedium,
		Description: "Offer to review all recent declined transactions and their reasons.",
		Category:    "Account Management", Icon: "📋",
	})
	rlog.AddAction(entity.NextBestAction{
		Title: "Check Specific Declined Transaction", Priority: entity.PriorityMedium,
		Description: "Ask the customer if they want details about a particular declined transaction.",
		Category:    "Account Management", Icon: "❓",
	})
	return b.String()
}

func (h *TransactionHandler) describeMatches(relevant []entity.Transaction, rlog *entity.ReasoningLog) string {
	rlog.AddStep("No relevant declined transactions found, but other matching transactions were identified.")
	rlog.SetConstruction("Building response about the specific approved transactions found.")
	rlog.Take(
		"Specific Transaction(s) Information Provided",
		fmt.Sprintf("Provided details for %d approved transactions matching user query.", len(relevant)),
	)

	var b strings.Builder
	b.WriteString("I found these transactions matching your description:\n")
	allApproved := true
	for i, tx := range relevant {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "- %s: %s at %s in %s (Status: %s)\n", tx.Date, tx.Amount, tx.Merchant, tx.Location, tx.Status)
		if !strings.EqualFold(string(tx.Status), string(entity.StatusApproved)) {
			allApproved = false
		}
	}

	if allApproved {
		b.WriteString("\nIt looks like these were all approved successfully. Did you have a specific question about them?")
		rlog.AddAction(entity.NextBestAction{
			Title: "Clarify Transaction Question", Priority: entity.PriorityLow,
			Description: "Ask the user for more details about their question regarding these transactions.",
			Category:    "General Inquiry", Icon: "🤔",
		})
	} else {
		b.WriteString("\nLet me know if you need more details on any of these.")
	}
	return b.String()
}

func (h *TransactionHandler) nothingFound(declineFocused bool, rlog *entity.ReasoningLog) string {
	rlog.AddStep("No transactions found matching the query specifics or general transaction keywords.")
	rlog.SetConstruction("No relevant transactions found, providing general response and options.")
	rlog.Take("No Matching Transactions Found", "Informed user that no matching transactions were found.")

	response := "I couldn't find any recent transactions specifically matching your description."
	if declineFocused {
		response += " Were you looking for a declined transaction from a while ago, or perhaps at a different place?"
		rlog.AddAction(entity.NextBestAction{
			Title: "Search Older Transactions", Priority: entity.PriorityLow,
			Description: "Offer to search transaction history further back (e.g., 60 or 90 days).",
			Category:    "Account Management", Icon: "📅",
		})
		rlog.AddAction(entity.NextBestAction{
			Title: "Verify Merchant/Location", Priority: entity.PriorityLow,
			Description: "Ask the user to confirm the spelling or details of the merchant/location.",
			Category:    "General Inquiry", Icon: "✏️",
		})
	} else {
		response += " Would you like to see your full recent transaction history, or search by a specific date range?"
		rlog.AddAction(entity.NextBestAction{
			Title: "Show Full Recent History", Priority: entity.PriorityLow,
			Description: "Offer to display the complete transaction history for the last 30 days.",
			Category:    "Account Management", Icon: "📜",
		})
		rlog.AddAction(entity.NextBestAction{
			Title: "Search by Date Range", Priority: entity.PriorityLow,
			Description: "Offer to search for transactions within a specific start and end date.",
			Category:    "Account Management", Icon: "🗓️",
		})
	}
	return response
}

// extractMerchants returns merchants from the fixed vocabulary mentioned in
// the query.
func extractMerchants(query string) []string {
	lower := strings.ToLower(query)
	var merchants []string
	for _, m := range merchantVocabulary {
		if wordMentioned(lower, m) && !containsString(merchants, m) {
			merchants = append(merchants, m)
		}
	}
	return merchants
}

// matchesAny reports whether any needle appears in haystack,
// case-insensitively.
func matchesAny(haystack string, needles []string) bool {
	lower := strings.ToLower(haystack)
	for _, n := range needles {
		if n != "" && strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
