package types

import (
	"strings"
	"time"
)

// TicketStatus represents the lifecycle state of a support ticket
type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "pending"
	TicketStatusResolved TicketStatus = "resolved"
)

// SupportTicket is a question a user sent to the operators
type SupportTicket struct {
	ID        string       `json:"id"`
	UserName  string       `json:"userName"`
	Question  string       `json:"question"`
	Answer    *string      `json:"answer"` // nil until resolved
	Timestamp time.Time    `json:"timestamp"`
	Status    TicketStatus `json:"status"`
}

// IsResolved reports whether the ticket carries an answer
func (t SupportTicket) IsResolved() bool {
	return t.Status == TicketStatusResolved && t.Answer != nil
}

// Option is a single answer choice of a quiz question
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// CustomQuestion is an operator-authored quiz question
type CustomQuestion struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Options   []Option  `json:"options"`
	CreatedAt time.Time `json:"createdAt"`
}

// Visitor tracks the last activity of a named quiz taker
type Visitor struct {
	Username string    `json:"username"`
	LastSeen time.Time `json:"lastSeen"`
}

// Matches compares visitor names case-insensitively
func (v Visitor) Matches(name string) bool {
	return strings.EqualFold(v.Username, strings.TrimSpace(name))
}

// UserProfile is the head of a digital detox points ledger
type UserProfile struct {
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	TotalPoints int       `json:"totalPoints"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// ScreenTimeLog is one daily screen-time submission
type ScreenTimeLog struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DateStr     string    `json:"dateStr"` // YYYY-MM-DD, local calendar day
	Hours       float64   `json:"hours"`
	Points      int       `json:"points"`
	Timestamp   time.Time `json:"timestamp"`
	ImageBase64 string    `json:"imageBase64,omitempty"` // evidence, dropped first when storage is full
}

// HasEvidence reports whether the log still carries its screenshot
func (l ScreenTimeLog) HasEvidence() bool {
	return l.ImageBase64 != ""
}

// LedgerResult is returned by a successful screen-time submission
type LedgerResult struct {
	Points   int `json:"points"`
	NewTotal int `json:"newTotal"`
}
