package client

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// IntentJudge double-checks semantic cache hits: vector similarity alone can
// conflate queries like "why was my card declined" and "how do I decline a
// charge", so a cheap model call confirms the intent actually matches.
type IntentJudge struct {
	client *genai.Client
	model  string
}

func NewIntentJudge(client *genai.Client, model string) *IntentJudge {
	return &IntentJudge{client: client, model: model}
}

const judgeInstruction = `You are a Semantic Intent Judge.
Compare the following two customer-support queries.
Are they asking for the same information, even if phrased differently?
- If they have the same intent, respond ONLY with "YES".
- If there is a nuance difference or they ask for different things, respond ONLY with "NO".`

// SameIntent returns false on any error so a doubtful cache hit is never
// served.
func (j *IntentJudge) SameIntent(ctx context.Context, query, cachedQuery string) bool {
	prompt := fmt.Sprintf("%s\n\nQuery 1: %s\nQuery 2: %s", judgeInstruction, query, cachedQuery)

	resp, err := j.client.Models.GenerateContent(ctx, j.model, genai.Text(prompt), nil)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToUpper(strings.TrimSpace(resp.Text())), "YES")
}
