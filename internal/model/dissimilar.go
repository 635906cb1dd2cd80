package model

import "time"

// DissimilarPair records a user's declaration that two descriptions are
// unrelated. The pair is symmetric: Description1 and Description2 are the
// two raw strings in lexicographic order, so the same unordered pair always
// produces the same record.
type DissimilarPair struct {
	Timestamp    time.Time `json:"timestamp"`
	PairKey      string    `json:"pairKey"`
	Description1 string    `json:"description1"`
	Description2 string    `json:"description2"`
}
