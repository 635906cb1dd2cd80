package model

import "time"

// UploadSummary aggregates the transactions of one processed file.
// All fields default to zero when a statement had no rows of that kind.
type UploadSummary struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	NetBalance    float64 `json:"netBalance"`
	IncomeCount   int     `json:"incomeCount"`
	ExpenseCount  int     `json:"expenseCount"`
}

// UploadRecord is the persistent log entry for one processed statement
// file. Records are created once and never mutated.
type UploadRecord struct {
	UploadDate       time.Time     `json:"uploadDate"`
	ID               string        `json:"id"`
	FileName         string        `json:"fileName"`
	FileData         []byte        `json:"fileData,omitempty"`
	Summary          UploadSummary `json:"summary"`
	FileSize         int64         `json:"fileSize"`
	TransactionCount int           `json:"transactionCount"`
	Year             int           `json:"year,omitempty"`
}

// UploadStats summarizes the whole upload history.
type UploadStats struct {
	OldestUpload               time.Time
	NewestUpload               time.Time
	TotalFiles                 int
	TotalTransactions          int
	TotalSize                  int64
	AverageTransactionsPerFile int
}
