package learn

import (
	"strings"

	"github.com/kestrelfin/kestrel/internal/model"
	"github.com/kestrelfin/kestrel/internal/normalize"
)

// keywordConfidence is reported for static keyword hits. Deliberately
// below any learned-pattern confidence so learned answers win displays.
const keywordConfidence = 0.5

// keywordCategories maps description keywords to fallback categories,
// consulted only when the learned store has no answer.
var keywordCategories = map[string]string{
	"grocery":     "Groceries",
	"supermarket": "Groceries",
	"market":      "Groceries",
	"restaurant":  "Dining",
	"cafe":        "Dining",
	"coffee":      "Dining",
	"pizza":       "Dining",
	"bakery":      "Dining",
	"fuel":        "Transport",
	"petrol":      "Transport",
	"gas station": "Transport",
	"parking":     "Transport",
	"taxi":        "Transport",
	"uber":        "Transport",
	"train":       "Transport",
	"transit":     "Transport",
	"pharmacy":    "Healthcare",
	"chemist":     "Healthcare",
	"clinic":      "Healthcare",
	"hospital":    "Healthcare",
	"netflix":     "Entertainment",
	"spotify":     "Entertainment",
	"cinema":      "Entertainment",
	"electric":    "Utilities",
	"water":       "Utilities",
	"internet":    "Utilities",
	"insurance":   "Insurance",
	"rent":        "Housing",
	"mortgage":    "Housing",
	"salary":      "Income",
	"payroll":     "Income",
	"interest":    "Income",
	"atm":         "Cash",
	"withdrawal":  "Cash",
}

// SuggestKeyword returns a static keyword-rule suggestion for description,
// or nil when no keyword matches. Longer keywords win over shorter ones so
// "gas station" beats "gas".
func SuggestKeyword(description string) *model.Suggestion {
	normalized := normalize.Normalize(description)
	if normalized == "" {
		return nil
	}

	bestKeyword := ""
	bestCategory := ""
	for keyword, category := range keywordCategories {
		if !strings.Contains(normalized, keyword) {
			continue
		}
		// Lexicographic tiebreak keeps map iteration order out of results.
		if len(keyword) > len(bestKeyword) ||
			(len(keyword) == len(bestKeyword) && keyword < bestKeyword) {
			bestKeyword = keyword
			bestCategory = category
		}
	}

	if bestKeyword == "" {
		return nil
	}

	return &model.Suggestion{
		Category:     bestCategory,
		Confidence:   keywordConfidence,
		MerchantName: normalize.ExtractMerchant(description),
		Source:       model.SourceKeyword,
	}
}
