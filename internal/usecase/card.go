package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"support-console/internal/domain/entity"
)

// CardServicesHandler covers the card lifecycle: lost/stolen reports,
// replacements, status checks and spending limits.
type CardServicesHandler struct {
	bank *entity.Context
	llm  *llmTier
}

var (
	lostStolenRe   = regexp.MustCompile(`(?i)\b(lost|stolen|missing|can'?t find my card|someone took my card)\b`)
	replaceCardRe  = regexp.MustCompile(`(?i)\b(replace|replacement|new card|damaged|broken|expired|expiring soon)\b`)
	cardLimitsRe   = regexp.MustCompile(`(?i)\b(limit[s]?|spending limit|how much can i spend|withdrawal limit|max.*spend|max.*withdraw)\b`)
	cardStatusRe   = regexp.MustCompile(`(?i)\b(status|active|inactive|frozen|blocked|is my card working)\b`)
	replaceLimitRe = regexp.MustCompile(`(?i)\b(replace|limit)\b`)
)

// cardInfo is the handler's working view of the customer's card, inferred
// from the profile plus the transaction history.
type cardInfo struct {
	Type     string
	LastFour string
	Status   string
}

// Process runs the two-tier strategy for card servicing requests.
func (h *CardServicesHandler) Process(ctx context.Context, query string) entity.HandlerResult {
	rlog := entity.NewReasoningLog(string(entity.HandlerCardServices))
	rlog.AddStep("Initializing CardServicesAgent")
	rlog.AddStep("Received user prompt: '%s'", query)

	if h.llm != nil {
		rlog.AddStep("Using AI for card services processing")
		if result, ok := h.llm.process(ctx,
			"banking card services agent",
			"about their payment card",
			"report lost/stolen card, request replacement, check card status, ask about limits",
			"Check the customer profile and transaction history for card details and security flags.",
			query, rlog); ok {
			return result
		}
	}
	return h.processRuleBased(query, rlog)
}

func (h *CardServicesHandler) processRuleBased(query string, rlog *entity.ReasoningLog) entity.HandlerResult {
	rlog.AddStep("Using rule-based card services processing")

	intent := h.determineIntent(query, rlog)
	rlog.SetFactor("determined_intent", intent)
	rlog.AddStep("Determined user intent: %s", intent)

	card := h.getCardInfo(rlog)
	rlog.SetFactor("card_info", map[string]string{"type": card.Type, "last_four": card.LastFour, "status": card.Status})
	rlog.AddStep("Retrieved card info: %s ending in %s, status: %s", card.Type, card.LastFour, card.Status)

	issues := h.checkCardIssues(card)
	rlog.SetFactor("card_issues", issues)
	if len(issues) > 0 {
		rlog.AddStep("Identified potential card issues: %v", issues)
	}

	var response string
	switch intent {
	case "report_lost_stolen":
		response = h.reportLostStolen(card, rlog)
	case "replace_card":
		response = h.replaceCard(card, rlog)
	case "card_limits":
		response = h.cardLimits(card, rlog)
	case "card_status":
		response = h.cardStatus(card, issues, rlog)
	default:
		response = h.generalCardHelp(card, rlog)
	}

	return entity.HandlerResult{
		Response:        strings.TrimSpace(response),
		Reasoning:       rlog,
		NextBestActions: rlog.NextBestActions,
	}
}

func (h *CardServicesHandler) reportLostStolen(card cardInfo, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Handling 'report_lost_stolen' intent.")
	rlog.Consider("Block card and start replacement", "User reported their card lost or stolen.")

	if card.Status == "reported lost" || card.Status == "stolen" {
		rlog.Take("Lost Card Report Skipped", "Card already reported and blocked. No re-report needed.")
		rlog.SetConstruction("Reassuring user the card is already blocked and offering a replacement.")
		rlog.AddAction(entity.NextBestAction{
			Title: "Order Replacement Card", Priority: entity.PriorityHigh,
			Description: "Order a replacement for the already-blocked card and confirm shipping address.",
			Category:    "Card Services", Icon: "📦",
		})
		return fmt.Sprintf("I see your %s ending in %s has already been reported and is blocked, so no new charges can go through. Would you like me to order a replacement card now?",
			card.Type, card.LastFour)
	}

	rlog.Take("Card Blocked", fmt.Sprintf("Marked %s ending in %s as reported lost and blocked it.", card.Type, card.LastFour))
	rlog.SetConstruction("Confirming the card block and outlining the replacement process.")
	rlog.AddAction(entity.NextBestAction{
		Title: "Verify Shipping Address", Priority: entity.PriorityMedium,
		Description: "Confirm the address on file before shipping the replacement card.",
		Category:    "Card Services", Icon: "🏠",
	})
	rlog.AddAction(entity.NextBestAction{
		Title: "Offer Digital Card Access", Priority: entity.PriorityMedium,
		Description: "Offer instant digital card access via the mobile wallet while the replacement ships.",
		Category:    "Card Services", Icon: "📱",
	})
	rlog.AddAction(entity.NextBestAction{
		Title: "Review Recent Transactions (Security)", Priority: entity.PriorityHigh,
		Description: "Walk through recent transactions to spot any unauthorized activity.",
		Category:    "Security", Icon: "🔍",
	})
	return fmt.Sprintf("I'm sorry to hear that. I've immediately blocked your %s ending in %s so no one can use it. A replacement card will be sent to your address on file and should arrive in 5-7 business days. Is your shipping address still current?",
		card.Type, card.LastFour)
}

func (h *CardServicesHandler) replaceCard(card cardInfo, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Handling 'replace_card' intent.")
	rlog.Consider("Order replacement card", "User asked for a new or replacement card.")

	rlog.Take("Replacement Card Ordered", fmt.Sprintf("Initiated replacement for %s ending in %s.", card.Type, card.LastFour))
	rlog.SetConstruction("Confirming the replacement order and delivery timeline.")
	rlog.AddAction(entity.NextBestAction{
		Title: "Verify Shipping Address", Priority: entity.PriorityMedium,
		Description: "Confirm the address on file before shipping the replacement card.",
		Category:    "Card Services", Icon: "🏠",
	})
	rlog.AddAction(entity.NextBestAction{
		Title: "Offer Digital Card Access", Priority: entity.PriorityLow,
		Description: "Offer digital card access while the physical replacement is in transit.",
		Category:    "Card Services", Icon: "📱",
	})
	return fmt.Sprintf("Certainly. I've ordered a replacement for your %s ending in %s. Your current card will keep working until the new one is activated. The replacement should arrive within 5-7 business days. Can you confirm your shipping address is up to date?",
		card.Type, card.LastFour)
}

func (h *CardServicesHandler) cardLimits(card cardInfo, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Handling 'card_limits' intent.")
	rlog.Consider("Report spending and withdrawal limits", "User asked about card limits.")

	const (
		dailyPurchaseLimit = 5000
		dailyATMLimit      = 1000
	)
	rlog.SetFactor("daily_purchase_limit", dailyPurchaseLimit)
	rlog.SetFactor("daily_atm_limit", dailyATMLimit)

	response := fmt.Sprintf("Here are the limits for your %s ending in %s:\n- Daily purchase limit: $%d\n- Daily ATM withdrawal limit: $%d",
		card.Type, card.LastFour, dailyPurchaseLimit, dailyATMLimit)

	if strings.Contains(card.Type, "Credit") {
		creditLimit := h.bank.Customer.CreditLimit
		if creditLimit <= 0 {
			creditLimit = 10000
		}
		available := int(float64(creditLimit) * 0.7)
		rlog.SetFactor("credit_limit", creditLimit)
		response += fmt.Sprintf("\n- Total credit limit: $%d (approximately $%d currently available)", creditLimit, available)
	}

	rlog.Take("Limits Report", "Provided the card's daily and credit limits.")
	rlog.SetConstruction("Listing the card limits and offering an adjustment path.")

	if h.bank.Customer.EligibleForUpgrade {
		rlog.AddAction(entity.NextBestAction{
			Title: "Offer Limit Increase", Priority: entity.PriorityMedium,
			Description: "Customer is eligible for an upgrade; offer a credit limit increase review.",
			Category:    "Account Management", Icon: "📈",
		})
		response += "\n\nBy the way, you're eligible for a limit increase. Would you like me to start that review?"
	} else {
		rlog.AddAction(entity.NextBestAction{
			Title: "Explain Limit Adjustments", Priority: entity.PriorityLow,
			Description: "Explain how the customer can request a temporary or permanent limit change.",
			Category:    "Account Management", Icon: "ℹ️",
		})
	}
	return response
}

func (h *CardServicesHandler) cardStatus(card cardInfo, issues []string, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Handling 'card_status' intent.")
	rlog.Consider("Report current card status", "User asked whether their card is working.")

	rlog.Take("Card Status Report", fmt.Sprintf("Reported status '%s' for card ending in %s.", card.Status, card.LastFour))

	if card.Status != "active" {
		rlog.SetConstruction("Explaining why the card is blocked and how to resolve it.")
		rlog.AddAction(entity.NextBestAction{
			Title: "Order Replacement Card", Priority: entity.PriorityHigh,
			Description: "Order a replacement for the blocked card.",
			Category:    "Card Services", Icon: "📦",
		})
		return fmt.Sprintf("Your %s ending in %s is currently blocked because it was %s. No charges can go through on it. Would you like me to order a replacement?",
			card.Type, card.LastFour, card.Status)
	}

	rlog.SetConstruction("Confirming the card is active and surfacing any related issues.")
	response := fmt.Sprintf("Your %s ending in %s is active and working normally.", card.Type, card.LastFour)
	if len(issues) > 0 {
		response += fmt.Sprintf(" However, I did notice: %s.", strings.Join(issues, "; "))
		rlog.AddAction(entity.NextBestAction{
			Title: "Review Card Issues", Priority: entity.PriorityMedium,
			Description: "Walk through the flagged issues with the customer.",
			Category:    "Card Services", Icon: "⚠️",
		})
	}
	return response
}

func (h *CardServicesHandler) generalCardHelp(card cardInfo, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Handling general card inquiry.")
	rlog.Consider("Offer card service options", "Request did not match a specific card intent.")
	rlog.Take("Card Services Menu", "Listed available card services.")
	rlog.SetConstruction("Offering the available card services for the customer's card.")
	rlog.AddAction(entity.NextBestAction{
		Title: "Clarify Card Request", Priority: entity.PriorityMedium,
		Description: "Ask the customer which card service they need help with.",
		Category:    "Card Services", Icon: "❓",
	})
	return fmt.Sprintf("I can help with your %s ending in %s. I can report it lost or stolen, order a replacement, check its status, or review your spending limits. What would you like to do?",
		card.Type, card.LastFour)
}

// determineIntent classifies the query by keyword precedence:
// report_lost_stolen > replace_card > card_limits > card_status.
func (h *CardServicesHandler) determineIntent(query string, rlog *entity.ReasoningLog) string {
	lower := strings.ToLower(query)

	if lostStolenRe.MatchString(lower) {
		rlog.AddStep("Detected keywords for a lost or stolen card.")
		return "report_lost_stolen"
	}
	if replaceCardRe.MatchString(lower) {
		rlog.AddStep("Detected keywords for a card replacement.")
		return "replace_card"
	}
	if cardLimitsRe.MatchString(lower) {
		rlog.AddStep("Detected keywords about card limits.")
		return "card_limits"
	}
	if cardStatusRe.MatchString(lower) && !replaceLimitRe.MatchString(lower) {
		rlog.AddStep("Detected keywords about card status.")
		return "card_status"
	}
	rlog.AddStep("No specific card keywords found. Treating as a general card inquiry.")
	return "general_inquiry"
}

// getCardInfo infers the card's state: a "card reported lost" or "stolen"
// decline anywhere in the history means the card is currently blocked.
func (h *CardServicesHandler) getCardInfo(rlog *entity.ReasoningLog) cardInfo {
	card := cardInfo{
		Type:     h.bank.Customer.CardType,
		LastFour: h.bank.Customer.CardLastFour,
		Status:   "active",
	}
	if card.Type == "" {
		card.Type = "card"
	}
	if card.LastFour == "" {
		card.LastFour = "7842"
	}
	for _, tx := range h.bank.Transactions {
		reason := strings.ToLower(tx.Reason)
		if strings.Contains(reason, "card reported lost") || strings.Contains(reason, "stolen") {
			card.Status = "reported lost"
			rlog.AddStep("Transaction history shows the card was reported lost. Treating card as blocked.")
			break
		}
	}
	return card
}

func (h *CardServicesHandler) checkCardIssues(card cardInfo) []string {
	var issues []string
	if card.Status != "active" {
		issues = append(issues, fmt.Sprintf("card is currently %s", card.Status))
	}
	declined := h.bank.DeclinedTransactions()
	if len(declined) > 0 {
		issues = append(issues, fmt.Sprintf("%d recent declined transaction(s)", len(declined)))
	}
	if h.bank.NoticeHasIssue() {
		issues = append(issues, "travel notice has an activation problem")
	}
	return issues
}
