package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStale_NilReport(t *testing.T) {
	assert.True(t, IsStale(nil))
}

func TestIsStale_EmptyRounds(t *testing.T) {
	r := &Report{Summary: Summary{TotalScore: 50}}
	assert.True(t, IsStale(r))
}

func TestIsStale_ZeroTotalScore(t *testing.T) {
	r := &Report{
		Rounds:  []Round{{Round: 1}},
		Summary: Summary{TotalScore: 0},
	}
	assert.True(t, IsStale(r))
}

func TestIsStale_HealthyReport(t *testing.T) {
	r := &Report{
		Rounds:  []Round{{Round: 1}},
		Summary: Summary{TotalScore: 42},
	}
	assert.False(t, IsStale(r))
}

func TestPassBandFor_Thresholds(t *testing.T) {
	assert.Equal(t, PassLikely, PassBandFor(80))
	assert.Equal(t, PassLikely, PassBandFor(100))
	assert.Equal(t, Border, PassBandFor(79))
	assert.Equal(t, Border, PassBandFor(65))
	assert.Equal(t, Below, PassBandFor(64))
	assert.Equal(t, Below, PassBandFor(0))
}
