// Package ingest parses statement CSV files into transaction rows.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kestrelfin/kestrel/internal/common"
	"github.com/kestrelfin/kestrel/internal/model"
)

// Statement is the result of parsing one uploaded file.
type Statement struct {
	Rows    []model.TransactionRecord
	Summary model.UploadSummary
}

// columnLayout maps the header row of a statement CSV to field positions.
// Banks disagree on header names; we match a few common aliases.
type columnLayout struct {
	date        int
	description int
	amount      int
	debit       int
	credit      int
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// ParseCSV reads a statement CSV and returns its transaction rows with an
// aggregate summary. Year, when nonzero, resolves dates written without a
// year (e.g. "04/21").
func ParseCSV(r io.Reader, year int) (*Statement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: statement file is empty", common.ErrInvalidArgument)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	layout, err := detectColumns(header)
	if err != nil {
		return nil, err
	}

	stmt := &Statement{}
	line := 1
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, readErr)
		}
		line++

		row, parseErr := parseRow(record, layout, year)
		if parseErr != nil {
			return nil, fmt.Errorf("row %d: %w", line, parseErr)
		}
		if row == nil {
			continue // blank row
		}

		stmt.Rows = append(stmt.Rows, *row)
		accumulate(&stmt.Summary, row)
	}

	if len(stmt.Rows) == 0 {
		return nil, fmt.Errorf("%w: statement contains no transaction rows", common.ErrInvalidArgument)
	}

	return stmt, nil
}

func detectColumns(header []string) (*columnLayout, error) {
	layout := &columnLayout{date: -1, description: -1, amount: -1, debit: -1, credit: -1}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date", "transaction date", "posting date", "posted":
			layout.date = i
		case "description", "details", "narrative", "memo", "payee", "transaction":
			layout.description = i
		case "amount", "value":
			layout.amount = i
		case "debit", "withdrawal", "money out":
			layout.debit = i
		case "credit", "deposit", "money in":
			layout.credit = i
		}
	}

	if layout.date < 0 {
		return nil, fmt.Errorf("%w: no date column found in header", common.ErrInvalidArgument)
	}
	if layout.description < 0 {
		return nil, fmt.Errorf("%w: no description column found in header", common.ErrInvalidArgument)
	}
	if layout.amount < 0 && layout.debit < 0 && layout.credit < 0 {
		return nil, fmt.Errorf("%w: no amount column found in header", common.ErrInvalidArgument)
	}

	return layout, nil
}

func parseRow(record []string, layout *columnLayout, year int) (*model.TransactionRecord, error) {
	get := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	description := get(layout.description)
	dateText := get(layout.date)
	if description == "" && dateText == "" {
		return nil, nil
	}
	if description == "" {
		return nil, fmt.Errorf("%w: missing description", common.ErrInvalidArgument)
	}

	date, err := parseDate(dateText, year)
	if err != nil {
		return nil, err
	}

	amount, direction, err := parseAmount(get(layout.amount), get(layout.debit), get(layout.credit))
	if err != nil {
		return nil, err
	}

	return &model.TransactionRecord{
		Date:           date,
		Description:    description,
		Amount:         amount,
		Direction:      direction,
		CategorySource: model.SourceNone,
	}, nil
}

func parseDate(text string, year int) (time.Time, error) {
	if text == "" {
		return time.Time{}, fmt.Errorf("%w: missing date", common.ErrInvalidArgument)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}

	// Dates like "04/21" need the caller-supplied fiscal year.
	if year != 0 {
		if t, err := time.Parse("01/02", text); err == nil {
			return t.AddDate(year, 0, 0), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unparseable date %q", common.ErrInvalidArgument, text)
}

func parseAmount(amountText, debitText, creditText string) (float64, model.TransactionDirection, error) {
	if amountText != "" {
		amount, err := parseMoney(amountText)
		if err != nil {
			return 0, "", err
		}
		if amount < 0 {
			return math.Abs(amount), model.DirectionExpense, nil
		}
		return amount, model.DirectionIncome, nil
	}

	if debitText != "" {
		amount, err := parseMoney(debitText)
		if err != nil {
			return 0, "", err
		}
		return math.Abs(amount), model.DirectionExpense, nil
	}

	if creditText != "" {
		amount, err := parseMoney(creditText)
		if err != nil {
			return 0, "", err
		}
		return math.Abs(amount), model.DirectionIncome, nil
	}

	return 0, "", fmt.Errorf("%w: row has no amount", common.ErrInvalidArgument)
}

func parseMoney(text string) (float64, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(text)
	// Accounting notation: (42.00) means -42.00.
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		cleaned = "-" + strings.Trim(cleaned, "()")
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unparseable amount %q", common.ErrInvalidArgument, text)
	}
	return amount, nil
}

func accumulate(summary *model.UploadSummary, row *model.TransactionRecord) {
	switch row.Direction {
	case model.DirectionIncome:
		summary.TotalIncome += row.Amount
		summary.IncomeCount++
	case model.DirectionExpense:
		summary.TotalExpenses += row.Amount
		summary.ExpenseCount++
	}
	summary.NetBalance = summary.TotalIncome - summary.TotalExpenses
}
