package model

// Suggestion is the result of asking the categorizer for a category guess.
type Suggestion struct {
	Category     string
	MerchantName string
	Source       CategorySource
	Confidence   float64
	ExampleCount int
}
