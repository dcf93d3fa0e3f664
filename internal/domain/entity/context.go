package entity

import "strings"

// TransactionStatus is the settlement state of a card transaction.
type TransactionStatus string

const (
	StatusApproved TransactionStatus = "Approved"
	StatusDeclined TransactionStatus = "Declined"
	StatusPending  TransactionStatus = "Pending"
	StatusDisputed TransactionStatus = "Disputed"
)

// CustomerProfile is the account-holder data supplied by the console UI.
type CustomerProfile struct {
	Name               string `json:"name"`
	AccountType        string `json:"account_type"`
	AccountOpened      string `json:"account_opened"`
	CreditScore        int    `json:"credit_score"`
	AverageBalance     string `json:"average_balance"`
	CardType           string `json:"card_type"`
	CardLastFour       string `json:"card_last_four"`
	CreditLimit        int    `json:"credit_limit"`
	EligibleForUpgrade bool   `json:"eligible_for_upgrade"`
	ContactPreference  string `json:"contact_preference"`
	Phone              string `json:"phone"`
	Email              string `json:"email"`
}

// TravelNotice is a customer-submitted notification of upcoming travel.
// Dates are kept in their display form ("May 5, 2023"); parsing happens at
// the point of use so a malformed date degrades instead of failing a turn.
type TravelNotice struct {
	SubmittedDate     string   `json:"submitted_date"`
	TravelStart       string   `json:"travel_start"`
	TravelEnd         string   `json:"travel_end"`
	Countries         []string `json:"countries"`
	Status            string   `json:"status"`
	SubmissionChannel string   `json:"submission_channel"`
}

// Transaction is a single card transaction record.
type Transaction struct {
	Date     string            `json:"date"`
	Merchant string            `json:"merchant"`
	Location string            `json:"location"`
	Amount   string            `json:"amount"`
	Status   TransactionStatus `json:"status"`
	Reason   string            `json:"reason,omitempty"`
	CardUsed string            `json:"card_used,omitempty"`
}

// Declined reports whether the transaction was declined.
func (t Transaction) Declined() bool {
	return strings.EqualFold(string(t.Status), string(StatusDeclined))
}

// Context is the per-turn bundle of customer, travel-notice, and transaction
// data. It is owned by the caller; the only in-turn mutation the core performs
// is the simulated travel-notice activation.
type Context struct {
	Customer     CustomerProfile `json:"customer"`
	Notice       *TravelNotice   `json:"travel_notice,omitempty"`
	Transactions []Transaction   `json:"recent_transactions"`
}

// DeclinedTransactions returns all declined transactions in order.
func (c *Context) DeclinedTransactions() []Transaction {
	var declined []Transaction
	for _, tx := range c.Transactions {
		if tx.Declined() {
			declined = append(declined, tx)
		}
	}
	return declined
}

// NoticeHasIssue reports whether the travel notice is stuck in an error or
// unactivated state.
func (c *Context) NoticeHasIssue() bool {
	if c.Notice == nil {
		return false
	}
	status := strings.ToLower(c.Notice.Status)
	return strings.Contains(status, "error") || strings.Contains(status, "not activated")
}
