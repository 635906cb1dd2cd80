// Package storage provides the data persistence layer for the kestrel application.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/kestrelfin/kestrel/internal/common"
	"github.com/kestrelfin/kestrel/internal/model"
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("%w: context cannot be nil", common.ErrInvalidArgument)
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", common.ErrInvalidArgument, paramName)
	}
	return nil
}

// validatePattern validates a learned pattern before persistence.
func validatePattern(pattern *model.Pattern) error {
	if pattern == nil {
		return fmt.Errorf("%w: pattern cannot be nil", common.ErrInvalidArgument)
	}
	if strings.TrimSpace(pattern.MerchantName) == "" {
		return fmt.Errorf("%w: pattern missing merchant name", common.ErrInvalidArgument)
	}
	if strings.TrimSpace(pattern.Category) == "" {
		return fmt.Errorf("%w: pattern missing category", common.ErrInvalidArgument)
	}
	if pattern.UsageCount < 1 {
		return fmt.Errorf("%w: pattern usage count must be at least 1", common.ErrInvalidArgument)
	}
	if pattern.Confidence <= 0 || pattern.Confidence > 1 {
		return fmt.Errorf("%w: pattern confidence must be in (0,1]", common.ErrInvalidArgument)
	}
	return nil
}

// validateUploadRecord validates an upload history entry before insertion.
func validateUploadRecord(record *model.UploadRecord) error {
	if record == nil {
		return fmt.Errorf("%w: upload record cannot be nil", common.ErrInvalidArgument)
	}
	if strings.TrimSpace(record.FileName) == "" {
		return fmt.Errorf("%w: upload record missing file name", common.ErrInvalidArgument)
	}
	if record.FileSize < 0 {
		return fmt.Errorf("%w: upload record file size cannot be negative", common.ErrInvalidArgument)
	}
	if record.TransactionCount < 0 {
		return fmt.Errorf("%w: upload record transaction count cannot be negative", common.ErrInvalidArgument)
	}
	return nil
}

// validateTransactionRecords validates a batch of transaction records.
func validateTransactionRecords(records []model.TransactionRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: records cannot be empty", common.ErrInvalidArgument)
	}
	for i, rec := range records {
		if strings.TrimSpace(rec.Description) == "" {
			return fmt.Errorf("%w: record at index %d missing description", common.ErrInvalidArgument, i)
		}
		if rec.Date.IsZero() {
			return fmt.Errorf("%w: record at index %d missing date", common.ErrInvalidArgument, i)
		}
		switch rec.Direction {
		case model.DirectionIncome, model.DirectionExpense:
		default:
			return fmt.Errorf("%w: record at index %d has invalid direction %q", common.ErrInvalidArgument, i, rec.Direction)
		}
	}
	return nil
}
