package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		riskRate float64
		verdict  string
		category Category
		level    Level
	}{
		{"zero", 0, VerdictGenuine, CategoryGenuine, LevelLow},
		{"low band", 25, VerdictGenuine, CategoryGenuine, LevelLow},
		{"genuine boundary inclusive", 40, VerdictGenuine, CategoryGenuine, LevelLow},
		{"just above genuine boundary", 41, VerdictSuspicious, CategorySuspicious, LevelMedium},
		{"middle band", 55, VerdictSuspicious, CategorySuspicious, LevelMedium},
		{"just below fake boundary", 69, VerdictSuspicious, CategorySuspicious, LevelMedium},
		{"fake boundary inclusive", 70, VerdictFake, CategoryFake, LevelHigh},
		{"high band", 85, VerdictFake, CategoryFake, LevelHigh},
		{"max", 100, VerdictFake, CategoryFake, LevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.riskRate)
			assert.Equal(t, tt.verdict, got.Verdict)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.level, got.Level)
		})
	}
}

func TestClassifyClampsOutOfRange(t *testing.T) {
	assert.Equal(t, CategoryGenuine, Classify(-10).Category)
	assert.Equal(t, CategoryFake, Classify(250).Category)
}

func TestClassifyEqualScoresAgree(t *testing.T) {
	// Two records with the same score must always land in the same band,
	// no matter which code path asked.
	for _, score := range []float64{0, 39.9, 40, 40.1, 69.9, 70, 100} {
		a := Classify(score)
		b := Classify(score)
		assert.Equal(t, a, b, "score %v", score)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1))
	assert.Equal(t, 100.0, Clamp(101))
	assert.Equal(t, 55.5, Clamp(55.5))
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("fake"))
	assert.True(t, ValidCategory("genuine"))
	assert.True(t, ValidCategory("suspicious"))
	assert.False(t, ValidCategory("all"))
	assert.False(t, ValidCategory(""))
}
