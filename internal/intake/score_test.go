package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lease-backend/internal/models"
)

func TestCalculateReadinessScore_StrongApplicant(t *testing.T) {
	data := map[string]interface{}{
		"financialInfo": map[string]interface{}{
			"monthlyIncome":   12000.0,
			"creditScore":     780,
			"employmentYears": 6.0,
		},
		"rentalHistory": map[string]interface{}{
			"yearsRenting":      7,
			"priorEvictions":    0,
			"landlordReference": true,
		},
	}

	score := CalculateReadinessScore(data)

	// financial 100 * 0.6 + history 100 * 0.4
	assert.Equal(t, 100, score)
	assert.Equal(t, models.PriorityHigh, DeterminePriority(score))
}

func TestCalculateReadinessScore_MidTierApplicant(t *testing.T) {
	data := map[string]interface{}{
		"financialInfo": map[string]interface{}{
			"monthlyIncome":   4000.0,
			"creditScore":     690,
			"employmentYears": 1.5,
		},
		"rentalHistory": map[string]interface{}{
			"yearsRenting":   2,
			"priorEvictions": 0,
		},
	}

	score := CalculateReadinessScore(data)

	// financial: 20 + 30 + 10 = 60; history: 35 + 20 = 55
	// 60*0.6 + 55*0.4 = 58
	assert.Equal(t, 58, score)
	assert.Equal(t, models.PriorityStandard, DeterminePriority(score))
}

func TestCalculateReadinessScore_EvictionsPenalty(t *testing.T) {
	with := CalculateReadinessScore(map[string]interface{}{
		"rentalHistory": map[string]interface{}{
			"yearsRenting":   5,
			"priorEvictions": 2,
		},
	})
	without := CalculateReadinessScore(map[string]interface{}{
		"rentalHistory": map[string]interface{}{
			"yearsRenting":   5,
			"priorEvictions": 0,
		},
	})

	assert.Less(t, with, without)
}

func TestCalculateReadinessScore_EmptyData(t *testing.T) {
	score := CalculateReadinessScore(map[string]interface{}{})

	// Only the clean-eviction bonus applies: 20 * 0.4 = 8.
	assert.Equal(t, 8, score)
	assert.Equal(t, models.PriorityLow, DeterminePriority(score))
}

func TestCalculateReadinessScore_StringNumbers(t *testing.T) {
	data := map[string]interface{}{
		"financialInfo": map[string]interface{}{
			"monthlyIncome": "7000",
			"creditScore":   "700",
		},
	}

	score := CalculateReadinessScore(data)

	// financial: 30 + 30 = 60; history: 20 (no evictions)
	assert.Equal(t, 44, score)
}

func TestDeterminePriority_Boundaries(t *testing.T) {
	assert.Equal(t, models.PriorityHigh, DeterminePriority(75))
	assert.Equal(t, models.PriorityStandard, DeterminePriority(74))
	assert.Equal(t, models.PriorityStandard, DeterminePriority(45))
	assert.Equal(t, models.PriorityLow, DeterminePriority(44))
	assert.Equal(t, models.PriorityLow, DeterminePriority(0))
}
