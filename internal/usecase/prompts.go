package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"support-console/internal/domain/entity"
)

// Prompt builders. Each returns the exact role/content sequence sent to the
// completion endpoint so the wire format can be pinned by fixture tests.

const routingPromptTemplate = `
You are an intelligent routing assistant for a banking customer service system. Your task is to analyze a customer query and select the most appropriate specialized agent to handle it from the following options: %s.

**Context Data**:
- Customer Info: %s
- Recent Transactions: %s
- Travel Notices: %s
- Customer Query: %s

**Agent Descriptions**:
- **TravelNoticeAgent**: Handles queries about travel plans, international transactions, or travel notifications (e.g., "I'm traveling to Paris", "card declined abroad").
- **TransactionAnalysisAgent**: Handles queries about specific transactions, payments, or declines (e.g., "Why was my payment declined?", "Check my recent purchase").
- **CardServicesAgent**: Handles queries about card issues, such as lost/stolen cards, card activation, or credit limits (e.g., "I lost my card", "Increase my credit limit").
- **GeneralInquiryAgent**: Handles general questions, account inquiries, or unspecified issues (e.g., "How do I check my balance?", "I need help").

**Instructions**:
1. Analyze the query and context to determine the best agent.
2. Return a JSON object with:
   - "agent": The selected agent name (one of the options above).
   - "reasoning": A detailed explanation of why this agent was chosen, including relevant keywords, context clues, and query intent.
   - "confidence": A float between 0 and 1 indicating confidence in the decision.
Return ONLY the JSON object, no extra text.`

// RoutingMessages builds the single system message the router sends.
func RoutingMessages(query string, bank *entity.Context) []entity.Message {
	names := make([]string, 0, 4)
	for _, k := range entity.AllHandlerKinds() {
		names = append(names, string(k))
	}
	content := fmt.Sprintf(routingPromptTemplate,
		strings.Join(names, ", "),
		mustIndentJSON(bank.Customer),
		mustIndentJSON(bank.Transactions),
		mustIndentJSON(bank.Notice),
		query,
	)
	return []entity.Message{{Role: entity.RoleSystem, Content: content}}
}

const sentimentPromptTemplate = `Analyze this customer input and automatically detect:
1. Overall sentiment (POSITIVE, NEGATIVE, or NEUTRAL)
2. Confidence score (0-1)
3. Specific emotions present (e.g., frustration, anger, satisfaction)
4. Key points of concern or satisfaction

Input:
%s

Return only JSON with keys: sentiment, confidence, emotions, key_points`

// SentimentMessages builds the sentiment-analysis conversation.
func SentimentMessages(query string) []entity.Message {
	return []entity.Message{
		{Role: entity.RoleSystem, Content: "You are an expert in emotional analysis and customer service."},
		{Role: entity.RoleUser, Content: fmt.Sprintf(sentimentPromptTemplate, query)},
	}
}

const actionPromptTemplate = `Based on the following information, recommend the next best actions for a bank agent to take:

CUSTOMER INFORMATION:
%s

RECENT TRANSACTIONS:
%s

TRAVEL NOTICE:
%s

CUSTOMER QUERY:
%s

SENTIMENT ANALYSIS:
%s

Return a JSON array with the top 5 recommended actions, each containing:
1. "action": a short action title
2. "description": detailed description of what the agent should do
3. "priority": "High", "Medium", or "Low"
4. "icon": an appropriate emoji for the action
5. "category": the category of action (e.g., "Technical Resolution", "Customer Service", "Sales Opportunity")

Return only the JSON array with no additional text.`

// ActionMessages builds the action-recommendation conversation.
func ActionMessages(query string, bank *entity.Context, sentiment entity.SentimentResult) []entity.Message {
	content := fmt.Sprintf(actionPromptTemplate,
		mustIndentJSON(bank.Customer),
		mustIndentJSON(bank.Transactions),
		mustIndentJSON(bank.Notice),
		query,
		mustIndentJSON(sentiment),
	)
	return []entity.Message{
		{Role: entity.RoleSystem, Content: "You are an expert in banking customer service strategy."},
		{Role: entity.RoleUser, Content: content},
	}
}

const narrativePromptTemplate = `Provide a detailed step-by-step chain of thought analysis for this customer service situation:

CUSTOMER INFORMATION:
%s

RECENT TRANSACTIONS:
%s

TRAVEL NOTICE:
%s

CUSTOMER QUERY:
%s

SENTIMENT ANALYSIS:
%s

Walk through the situation as a senior support analyst would: what happened, why, what the customer needs, and what the agent should do next.`

// NarrativeMessages builds the narrative-explanation conversation.
func NarrativeMessages(query string, bank *entity.Context, sentiment entity.SentimentResult) []entity.Message {
	content := fmt.Sprintf(narrativePromptTemplate,
		mustIndentJSON(bank.Customer),
		mustIndentJSON(bank.Transactions),
		mustIndentJSON(bank.Notice),
		query,
		mustIndentJSON(sentiment),
	)
	return []entity.Message{
		{Role: entity.RoleSystem, Content: "You are an expert in banking customer service strategy."},
		{Role: entity.RoleUser, Content: content},
	}
}

const handlerPromptTemplate = `
You are a %s. Your task is to analyze a customer query %s and provide a response with recommended actions.

**Context Data**:
- Customer Info: %s
- Recent Transactions: %s
- Travel Notices: %s
- Customer Query: %s

**Instructions**:
1. Analyze the query to identify the intent (e.g., %s).
2. %s
3. Generate a natural language response addressing the query.
4. Suggest 1-3 next best actions with priority (High, Medium, Low), description, category, and an emoji icon.
5. Return a JSON object with:
   - "response": The natural language response.
   - "next_best_actions": List of actions, each with "action", "priority", "description", "category", "icon".
   - "intent": The detected intent.
Return ONLY the JSON object, wrapped in a json code fence.`

// handlerMessages builds the system prompt for a handler's LLM-backed tier.
func handlerMessages(persona, focus, intents, contextStep, query string, bank *entity.Context) []entity.Message {
	content := fmt.Sprintf(handlerPromptTemplate,
		persona, focus,
		mustIndentJSON(bank.Customer),
		mustIndentJSON(bank.Transactions),
		mustIndentJSON(bank.Notice),
		query,
		intents, contextStep,
	)
	return []entity.Message{{Role: entity.RoleSystem, Content: content}}
}

// mustIndentJSON serializes context data for prompt embedding. Encoding these
// structures cannot fail; a nil pointer renders as "null".
func mustIndentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}
