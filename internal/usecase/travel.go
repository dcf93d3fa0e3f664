package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"support-console/internal/domain/entity"
)

// TravelNoticeHandler manages travel notices and international transaction
// issues. Its activate_notice intent carries the turn's only state mutation:
// clearing a notice stuck in the "system error" state.
type TravelNoticeHandler struct {
	bank *entity.Context
	llm  *llmTier
}

// noticeStuckStatus is the exact state a notice lands in when submission
// succeeded but activation failed.
const noticeStuckStatus = "Submitted but not activated due to system error"

const noticeDateLayout = "January 2, 2006"

var (
	activateIntentRe = regexp.MustCompile(`(?i)\b(activate|fix|enable|reactivate|confirm it'?s active)\b`)
	updateIntentRe   = regexp.MustCompile(`(?i)\b(update|change|modify|edit|add countries|remove countries|extend|shorten)\b`)
	securityReasonRe = regexp.MustCompile(`(?i)(travel|location|security block|unusual activity)`)
	declineStatusRe  = regexp.MustCompile(`(?i)\b(declined?|denied|rejected|failed|status|not working|isn'?t working|wasn'?t working)\b`)
)

var createIntentKeywords = []string{"create", "set up", "new", `add.*notice`, `submit.*notice`, `inform.*travel`, "going to"}

// Process runs the two-tier strategy for travel notices.
func (h *TravelNoticeHandler) Process(ctx context.Context, query string) entity.HandlerResult {
	rlog := entity.NewReasoningLog(string(entity.HandlerTravelNotice))
	rlog.AddStep("Initializing TravelNoticeAgent")
	rlog.AddStep("Received user prompt: '%s'", query)

	if h.llm != nil {
		rlog.AddStep("Using AI for travel notice processing")
		if result, ok := h.llm.process(ctx,
			"banking travel notice agent",
			"about travel notices or international transactions",
			"check travel notice status, create new notice, update notice, activate notice",
			"Check the travel notice data for active notices and relevant details.",
			query, rlog); ok {
			return result
		}
	}
	return h.processRuleBased(query, rlog)
}

func (h *TravelNoticeHandler) processRuleBased(query string, rlog *entity.ReasoningLog) entity.HandlerResult {
	rlog.AddStep("Using rule-based travel notice processing")

	intent := h.determineIntent(query, rlog)
	rlog.SetFactor("determined_intent", intent)
	rlog.AddStep("Determined user intent: %s", intent)

	mentionedCountries := extractPlaces(query, countryVocabulary)
	rlog.SetFactor("mentioned_countries", mentionedCountries)
	rlog.AddStep("Extracted countries from prompt: %v", mentionedCountries)

	active := h.noticeIsActive(rlog)
	rlog.SetFactor("has_active_notice", active)
	if h.bank.Notice != nil {
		rlog.SetFactor("current_notice_details", *h.bank.Notice)
	}
	rlog.AddStep("Checked for active travel notice. Active: %v", active)

	needsActivationFix := active && h.bank.Notice != nil && h.bank.Notice.Status == noticeStuckStatus

	var response string
	switch intent {
	case "check_status":
		response = h.checkStatus(active, needsActivationFix, rlog)
	case "create_notice":
		response = h.createNotice(active, mentionedCountries, rlog)
	case "update_notice":
		response = h.updateNotice(active, mentionedCountries, rlog)
	case "activate_notice":
		response = h.activateNotice(active, needsActivationFix, rlog)
	}

	response = h.crossCheckDeclines(response, rlog)

	return entity.HandlerResult{
		Response:        strings.TrimSpace(response),
		Reasoning:       rlog,
		NextBestActions: rlog.NextBestActions,
	}
}

func (h *TravelNoticeHandler) checkStatus(active, needsActivationFix bool, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Handling 'check_status' intent.")
	rlog.Consider("Provide current travel notice status", "User asked about existing travel notice.")

	if !active {
		rlog.Take("Travel Notice Status Report", "Informed user no active notice found.")
		rlog.SetConstruction("Informing user they have no active travel notice.")
		rlog.AddAction(entity.NextBestAction{
			Title: "Create Travel Notice", Priority: entity.PriorityMedium,
			Description: "Offer to help create a new travel notice for an upcoming trip.",
			Category:    "Travel Services", Icon: "➕",
		})
		return "It looks like you don't have any active travel notices set up right now. Are you planning a trip? I can help you set one up."
	}

	notice := h.bank.Notice
	rlog.Take("Travel Notice Status Report", fmt.Sprintf("Provided details about active notice for %v.", notice.Countries))
	rlog.SetConstruction("Informing user about active travel notice details.")
	response := fmt.Sprintf("You currently have an active travel notice set for %s from %s to %s.",
		strings.Join(notice.Countries, ", "), orNA(notice.TravelStart), orNA(notice.TravelEnd))

	if needsActivationFix {
		response += " However, I see it wasn't activated correctly due to a system issue."
		rlog.AddAction(entity.NextBestAction{
			Title: "Fix & Activate Notice", Priority: entity.PriorityHigh,
			Description: "Immediately fix the system error and activate the pending travel notice.",
			Category:    "Travel Services", Icon: "🛠️",
		})
		response += " I can fix that for you right now."
	} else {
		response += " Your card should work as expected in these locations during this period."
		rlog.AddAction(entity.NextBestAction{
			Title: "View Notice Details", Priority: entity.PriorityLow,
			Description: "Offer to show the full details of the active travel notice.",
			Category:    "Travel Services", Icon: "📄",
		})
	}
	return response
}

func (h *TravelNoticeHandler) createNotice(active bool, mentionedCountries []string, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Handling 'create_notice' intent.")
	rlog.Consider("Set up new travel notice", "User expressed intent to create a travel plan/notice.")

	if active {
		notice := h.bank.Notice
		rlog.Take("Create Notice Halted", "User already has an active notice.")
		rlog.SetConstruction("Informing about existing notice and offering to update it instead.")
		rlog.AddAction(entity.NextBestAction{
			Title: "Update Existing Notice", Priority: entity.PriorityMedium,
			Description: "Offer to modify the current travel notice instead of creating a new one.",
			Category:    "Travel Services", Icon: "✏️",
		})
		rlog.AddAction(entity.NextBestAction{
			Title: "Cancel Existing Notice", Priority: entity.PriorityLow,
			Description: "Offer to cancel the current notice if it's no longer needed.",
			Category:    "Travel Services", Icon: "❌",
		})
		return fmt.Sprintf("You already have a travel notice active for %s (until %s). Did you want to update this existing notice, perhaps add more countries or change the dates?",
			strings.Join(notice.Countries, ", "), orNA(notice.TravelEnd))
	}

	rlog.Take("New Travel Notice Creation Initiated", "Guiding user through the creation process.")
	rlog.SetConstruction("Guiding user through creating a new travel notice, prompting for necessary details.")
	response := "Okay, I can help you set up a new travel notice. To do this, I'll need a few details:"
	response += "\n- Which countries will you be visiting?"
	response += "\n- What is the start date of your trip?"
	response += "\n- What is the end date of your trip?"

	if len(mentionedCountries) > 0 {
		response += fmt.Sprintf("\n\nYou mentioned %s. Shall I include these in the notice?", strings.Join(mentionedCountries, ", "))
		rlog.AddAction(entity.NextBestAction{
			Title: "Confirm Countries for Notice", Priority: entity.PriorityHigh,
			Description: fmt.Sprintf("Ask user to confirm adding %s to the new notice.", strings.Join(mentionedCountries, ", ")),
			Category:    "Travel Services", Icon: "✅",
		})
	} else {
		rlog.AddAction(entity.NextBestAction{
			Title: "Provide Travel Details", Priority: entity.PriorityHigh,
			Description: "Prompt user to provide countries, start date, and end date.",
			Category:    "Travel Services", Icon: "❓",
		})
	}
	return response
}

func (h *TravelNoticeHandler) updateNotice(active bool, mentionedCountries []string, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Handling 'update_notice' intent.")
	rlog.Consider("Update existing travel notice", "User expressed intent to modify their travel notice.")

	if !active {
		rlog.Take("Update Notice Halted", "No active notice found to update.")
		rlog.SetConstruction("No active notice to update, offering to create a new one instead.")
		rlog.AddAction(entity.NextBestAction{
			Title: "Create Travel Notice", Priority: entity.PriorityMedium,
			Description: "Guide customer through creating a new travel notice since none exists to update.",
			Category:    "Travel Services", Icon: "➕",
		})
		return "It looks like you don't have an active travel notice to update right now. Would you like to create a new one for an upcoming trip instead?"
	}

	notice := h.bank.Notice
	rlog.Take("Travel Notice Update Initiated", fmt.Sprintf("Offering to update notice for %v.", notice.Countries))
	rlog.SetConstruction("Guiding user through updating their existing notice, asking what needs changing.")
	response := fmt.Sprintf("Sure, I can help update your current travel notice (for %s, valid until %s). What would you like to change? You can add/remove countries or adjust the travel dates.",
		strings.Join(notice.Countries, ", "), orNA(notice.TravelEnd))

	var notIncluded, alreadyIncluded []string
	for _, country := range mentionedCountries {
		if containsString(notice.Countries, country) {
			alreadyIncluded = append(alreadyIncluded, country)
		} else {
			notIncluded = append(notIncluded, country)
		}
	}

	switch {
	case len(notIncluded) > 0:
		response += fmt.Sprintf("\n\nI see you mentioned %s. Would you like to add them to the notice?", strings.Join(notIncluded, ", "))
		rlog.AddAction(entity.NextBestAction{
			Title: "Add Countries to Notice", Priority: entity.PriorityMedium,
			Description: fmt.Sprintf("Offer to add %s to the existing travel notice.", strings.Join(notIncluded, ", ")),
			Category:    "Travel Services", Icon: "➕",
		})
	case len(alreadyIncluded) > 0:
		response += fmt.Sprintf("\n\nYou mentioned %s, which are already included. Did you want to change the travel dates associated with this notice?", strings.Join(alreadyIncluded, ", "))
		rlog.AddAction(entity.NextBestAction{
			Title: "Update Travel Dates", Priority: entity.PriorityMedium,
			Description: "Ask user if they want to modify the start or end dates for the notice.",
			Category:    "Travel Services", Icon: "📅",
		})
	default:
		rlog.AddAction(entity.NextBestAction{
			Title: "Specify Notice Changes", Priority: entity.PriorityHigh,
			Description: "Ask the user to specify what they want to change (countries or dates).",
			Category:    "Travel Services", Icon: "❓",
		})
	}
	return response
}

func (h *TravelNoticeHandler) activateNotice(active, needsActivationFix bool, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Handling 'activate_notice' intent.")
	rlog.Consider("Activate pending/faulty travel notice", "User specifically asked to activate or fix their notice.")

	switch {
	case needsActivationFix:
		rlog.Take("Travel Notice Activation (Fix)", "Fixed system error and activated the travel notice.")
		rlog.SetConstruction("Confirming notice activation after fixing the system error and apologizing.")
		// The turn's single simulated side effect: later stages in this turn
		// see the notice as active.
		h.bank.Notice.Status = "Active"

		notice := h.bank.Notice
		response := "I found the issue! There was a system glitch preventing your notice from activating properly. I've fixed that now."
		response += fmt.Sprintf("\nYour travel notice for %s (from %s to %s) is now **active**. ",
			strings.Join(notice.Countries, ", "), orNA(notice.TravelStart), orNA(notice.TravelEnd))
		response += "Apologies for that error. Your card should now work correctly in those locations."
		rlog.AddAction(entity.NextBestAction{
			Title: "Confirm Recent Declines Resolved", Priority: entity.PriorityHigh,
			Description: "Ask if the customer experienced any declines recently that should now be resolved.",
			Category:    "Card Services", Icon: "👍",
		})
		return response

	case active:
		notice := h.bank.Notice
		rlog.Take("Activation Check Complete", "Notice already active.")
		rlog.SetConstruction("Informing user that their travel notice is already active.")
		return fmt.Sprintf("Good news! Your travel notice for %s is already active and runs until %s. No further action needed on activation.",
			strings.Join(notice.Countries, ", "), orNA(notice.TravelEnd))

	default:
		rlog.Take("Activation Halted", "No notice found to activate.")
		rlog.SetConstruction("No notice found to activate, offering to create one.")
		rlog.AddAction(entity.NextBestAction{
			Title: "Create Travel Notice", Priority: entity.PriorityMedium,
			Description: "Guide customer through creating a new travel notice as none exists to activate.",
			Category:    "Travel Services", Icon: "➕",
		})
		return "I couldn't find a pending travel notice to activate. Do you need help setting up a new travel notice for a trip?"
	}
}

// crossCheckDeclines appends a coverage suggestion when declined transactions
// happened in countries the active notice does not list and the decline
// reason points at travel or security screening. The check runs after the
// primary response so a just-activated notice is cross-checked too.
func (h *TravelNoticeHandler) crossCheckDeclines(response string, rlog *entity.ReasoningLog) string {
	rlog.AddStep("Performing post-intent analysis: Checking for transaction/notice mismatches.")

	notice := h.bank.Notice
	if notice == nil || !strings.EqualFold(notice.Status, "Active") {
		rlog.AddStep("No transaction/notice mismatches found requiring immediate action.")
		return response
	}

	noticeCountries := make([]string, 0, len(notice.Countries))
	for _, c := range notice.Countries {
		noticeCountries = append(noticeCountries, strings.ToLower(c))
	}

	uncovered := map[string]bool{}
	for _, tx := range h.bank.Transactions {
		if !tx.Declined() {
			continue
		}
		location := strings.ToLower(tx.Location)
		var txCountry string
		for _, country := range knownCountries {
			if strings.Contains(location, country) {
				txCountry = country
				break
			}
		}
		if txCountry == "" || containsString(noticeCountries, txCountry) {
			continue
		}
		if securityReasonRe.MatchString(tx.Reason) {
			uncovered[normalizePlace(txCountry)] = true
		}
	}

	if len(uncovered) == 0 {
		rlog.AddStep("No transaction/notice mismatches found requiring immediate action.")
		return response
	}

	names := make([]string, 0, len(uncovered))
	for c := range uncovered {
		names = append(names, c)
	}
	sort.Strings(names)
	joined := strings.Join(names, ", ")

	rlog.AddStep("Found declined transactions in countries not covered by the active notice: %v", names)
	rlog.AddAction(entity.NextBestAction{
		Title: "Add Country to Notice", Priority: entity.PriorityHigh,
		Description: fmt.Sprintf("Suggest adding %s to the travel notice due to recent declines.", joined),
		Category:    "Travel Services", Icon: "🌍",
	})

	supplement := fmt.Sprintf("I noticed you had recent declined transactions in %s, which aren't currently covered by your active travel notice. Adding these countries could prevent future declines there. Would you like to do that?", joined)
	if response == "" {
		return supplement
	}
	if strings.HasSuffix(strings.TrimSpace(response), "?") {
		return response
	}
	return response + "\n\n**Additionally:** " + supplement
}

// determineIntent classifies the query by keyword precedence:
// activate > create > update > check_status.
func (h *TravelNoticeHandler) determineIntent(query string, rlog *entity.ReasoningLog) string {
	lower := strings.ToLower(query)

	if activateIntentRe.MatchString(lower) {
		rlog.AddStep("Detected keywords related to activating or fixing a notice.")
		return "activate_notice"
	}

	// A customer asking why their card was declined while their notice sits
	// in the system-error state wants the status checked, even when the
	// query recaps how they "set up" the notice in the first place.
	if h.bank.Notice != nil && h.bank.Notice.Status == noticeStuckStatus && declineStatusRe.MatchString(lower) {
		rlog.AddStep("Query mentions declines or notice status while the notice is stuck. Treating as a status check.")
		return "check_status"
	}

	for _, keyword := range createIntentKeywords {
		re := regexp.MustCompile(`\b` + keyword + `\b`)
		if re.MatchString(lower) && !updateIntentRe.MatchString(lower) {
			rlog.AddStep("Detected keywords related to creating a new notice.")
			return "create_notice"
		}
	}

	if updateIntentRe.MatchString(lower) {
		rlog.AddStep("Detected keywords related to updating an existing notice.")
		return "update_notice"
	}

	rlog.AddStep("No specific create/update/activate keywords found. Defaulting intent to 'check_status'.")
	return "check_status"
}

// noticeIsActive parses the notice dates; the notice counts as active when
// today falls inside the range or the trip has not started yet, and the
// status reads active or submitted. Unparseable dates degrade to "has
// countries listed".
func (h *TravelNoticeHandler) noticeIsActive(rlog *entity.ReasoningLog) bool {
	notice := h.bank.Notice
	if notice == nil || len(notice.Countries) == 0 {
		return false
	}
	if notice.TravelStart == "" || notice.TravelEnd == "" {
		return true
	}

	start, errStart := time.Parse(noticeDateLayout, notice.TravelStart)
	end, errEnd := time.Parse(noticeDateLayout, notice.TravelEnd)
	if errStart != nil || errEnd != nil {
		rlog.AddStep("Warning: Failed to parse travel notice dates. Activity status based solely on presence of countries.")
		return true
	}

	today := time.Now().Truncate(24 * time.Hour)
	activeWindow := (!today.Before(start) && !today.After(end)) || start.After(today)
	status := strings.ToLower(notice.Status)
	activeStatus := strings.Contains(status, "active") || strings.Contains(status, "submitted")
	return activeWindow && activeStatus
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
