package usecase

import (
	"context"
	"time"

	"support-console/internal/domain/entity"
)

// scriptedClient replays a fixed sequence of completion outcomes, one per
// call, and records every request it saw.
type scriptedClient struct {
	script []scriptedReply
	calls  []entity.CompletionRequest
}

type scriptedReply struct {
	content string
	err     error
}

func (c *scriptedClient) Complete(_ context.Context, req entity.CompletionRequest) (*entity.Completion, error) {
	c.calls = append(c.calls, req)
	if len(c.script) == 0 {
		return &entity.Completion{Content: "{}", TokenCount: 1}, nil
	}
	reply := c.script[0]
	c.script = c.script[1:]
	if reply.err != nil {
		return nil, reply.err
	}
	return &entity.Completion{Content: reply.content, TokenCount: 10}, nil
}

// failingClient errors on every call with a fixed error.
type failingClient struct {
	err   error
	calls int
}

func (c *failingClient) Complete(context.Context, entity.CompletionRequest) (*entity.Completion, error) {
	c.calls++
	return nil, c.err
}

func demoDate(daysFromNow int) string {
	return time.Now().AddDate(0, 0, daysFromNow).Format("January 2, 2006")
}

// testContext builds a customer bundle with an in-window travel notice stuck
// in the unactivated state and a mixed transaction history.
func testContext() *entity.Context {
	return &entity.Context{
		Customer: entity.CustomerProfile{
			Name:               "Priya Sharma",
			AccountType:        "Premium Checking",
			AccountOpened:      "March 2015",
			CreditScore:        760,
			AverageBalance:     "$12,450",
			CardType:           "Platinum Travel Rewards Credit Card",
			CardLastFour:       "7842",
			CreditLimit:        15000,
			EligibleForUpgrade: true,
			ContactPreference:  "email",
			Email:              "priya.sharma@example.com",
			Phone:              "+1 555-0173",
		},
		Notice: &entity.TravelNotice{
			SubmittedDate: demoDate(-3),
			TravelStart:   demoDate(-1),
			TravelEnd:     demoDate(14),
			Countries:     []string{"France", "Italy", "Spain"},
			Status:        "Submitted but not activated due to system error",
		},
		Transactions: []entity.Transaction{
			{Date: demoDate(-10), Merchant: "Starbucks", Location: "Seattle, USA", Amount: "$6.45", Status: entity.StatusApproved},
			{Date: demoDate(-4), Merchant: "Tokyo Central Market", Location: "Tokyo, Japan", Amount: "$85.00", Status: entity.StatusDeclined, Reason: "Insufficient funds"},
			{Date: demoDate(-3), Merchant: "Uber", Location: "Berlin, Germany", Amount: "$23.10", Status: entity.StatusApproved},
			{Date: demoDate(-2), Merchant: "La Casa Tapas", Location: "Barcelona, Spain", Amount: "$54.80", Status: entity.StatusDeclined, Reason: "Card reported lost"},
			{Date: demoDate(-1), Merchant: "Amazon", Location: "Online", Amount: "$120.99", Status: entity.StatusApproved},
		},
	}
}
