package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/kestrelfin/kestrel/internal/learn"
)

func TestSuggestThreshold(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Reset()
	assert.InDelta(t, learn.DefaultScoreThreshold, suggestThreshold(), 1e-9)

	viper.Set("suggest.threshold", 55.0)
	assert.InDelta(t, 55.0, suggestThreshold(), 1e-9)

	// Zero and negative values are not usable thresholds.
	viper.Set("suggest.threshold", -1.0)
	assert.InDelta(t, learn.DefaultScoreThreshold, suggestThreshold(), 1e-9)
}
