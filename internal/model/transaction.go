package model

import "time"

// TransactionDirection indicates whether money flowed in or out.
type TransactionDirection string

const (
	// DirectionIncome marks a credit to the account.
	DirectionIncome TransactionDirection = "income"
	// DirectionExpense marks a debit from the account.
	DirectionExpense TransactionDirection = "expense"
)

// CategorySource indicates where a transaction's category came from.
type CategorySource string

const (
	// SourceLearned means the category came from the learned pattern store.
	SourceLearned CategorySource = "learned"
	// SourceKeyword means the category came from the static keyword rules.
	SourceKeyword CategorySource = "keyword"
	// SourceNone means no categorizer produced a label.
	SourceNone CategorySource = "none"
)

// TransactionRecord is a single parsed statement row as persisted.
type TransactionRecord struct {
	Date           time.Time            `json:"date"`
	ID             string               `json:"id"`
	UploadID       string               `json:"uploadId"`
	Description    string               `json:"description"`
	Category       string               `json:"category"`
	CategorySource CategorySource       `json:"categorySource"`
	Direction      TransactionDirection `json:"direction"`
	Amount         float64              `json:"amount"`
}
