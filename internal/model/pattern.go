// Package model defines the core domain models used throughout the application.
package model

import "time"

// MaxPatternExamples bounds the example descriptions retained per pattern.
const MaxPatternExamples = 10

// InitialConfidence is assigned to a pattern on first training.
const InitialConfidence = 0.7

// Pattern is a learned association between a transaction description and a
// user-chosen category.
type Pattern struct {
	CreatedAt             time.Time `json:"createdAt"`
	LastUsed              time.Time `json:"lastUsed"`
	ID                    string    `json:"id"`
	Description           string    `json:"description"`
	NormalizedDescription string    `json:"normalizedDescription"`
	MerchantName          string    `json:"merchantName"`
	Category              string    `json:"category"`
	Examples              []string  `json:"examples"`
	Amount                float64   `json:"amount"`
	Confidence            float64   `json:"confidence"`
	UsageCount            int       `json:"usageCount"`
}

// ConfidenceForUsage returns the confidence for a pattern that has been
// confirmed usageCount times. Monotonic step function: more confirmations
// never lower confidence.
func ConfidenceForUsage(usageCount int) float64 {
	switch {
	case usageCount >= 10:
		return 0.95
	case usageCount >= 5:
		return 0.90
	case usageCount >= 3:
		return 0.85
	case usageCount >= 2:
		return 0.80
	default:
		return InitialConfidence
	}
}

// AppendExample records a raw description on the pattern, keeping only the
// most recent MaxPatternExamples entries.
func (p *Pattern) AppendExample(description string) {
	p.Examples = append(p.Examples, description)
	if len(p.Examples) > MaxPatternExamples {
		p.Examples = p.Examples[len(p.Examples)-MaxPatternExamples:]
	}
}
