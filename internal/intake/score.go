package intake

import (
	"fmt"
	"strconv"

	"lease-backend/internal/models"
)

// CalculateReadinessScore derives a 0-100 readiness score from the
// application's financial and rental-history data. Weights: financial 0.6,
// rental history 0.4.
func CalculateReadinessScore(data map[string]interface{}) int {
	financial := financialScore(data)
	history := historyScore(data)

	score := int(float64(financial)*0.6 + float64(history)*0.4)
	return clamp(score, 0, 100)
}

func financialScore(data map[string]interface{}) int {
	financialData := subMap(data, "financialInfo")

	income := 0.0
	if raw, ok := financialData["monthlyIncome"]; ok {
		if v, err := parseFloat(raw); err == nil && v >= 0 {
			income = v
		}
	}

	creditScore := 0
	if raw, ok := financialData["creditScore"]; ok {
		if v, err := parseInt(raw); err == nil {
			// Clamp to valid FICO range
			creditScore = clamp(v, 300, 850)
		}
	}

	employmentYears := 0.0
	if raw, ok := financialData["employmentYears"]; ok {
		if v, err := parseFloat(raw); err == nil && v >= 0 {
			employmentYears = v
		}
	}

	score := 0

	// Monthly income (max 40 points)
	switch {
	case income >= 10000:
		score += 40
	case income >= 6000:
		score += 30
	case income >= 3500:
		score += 20
	case income >= 2000:
		score += 10
	}

	// Credit score (max 40 points)
	switch {
	case creditScore >= 740:
		score += 40
	case creditScore >= 670:
		score += 30
	case creditScore >= 580:
		score += 20
	case creditScore >= 500:
		score += 10
	}

	// Employment tenure (max 20 points)
	switch {
	case employmentYears >= 5:
		score += 20
	case employmentYears >= 2:
		score += 15
	case employmentYears >= 1:
		score += 10
	}

	return clamp(score, 0, 100)
}

func historyScore(data map[string]interface{}) int {
	historyData := subMap(data, "rentalHistory")

	years := 0
	if raw, ok := historyData["yearsRenting"]; ok {
		if v, err := parseInt(raw); err == nil && v >= 0 {
			years = v
		}
	}

	evictions := 0
	if raw, ok := historyData["priorEvictions"]; ok {
		if v, err := parseInt(raw); err == nil && v >= 0 {
			evictions = v
		}
	}

	reference := false
	if raw, ok := historyData["landlordReference"]; ok {
		reference, _ = raw.(bool)
	}

	score := 0

	// Renting track record (max 50 points)
	switch {
	case years >= 5:
		score += 50
	case years >= 2:
		score += 35
	case years >= 1:
		score += 20
	}

	// Landlord reference (30 points)
	if reference {
		score += 30
	}

	// Clean eviction record (20 points); any eviction zeroes the bonus
	// and costs 25 per incident.
	if evictions == 0 {
		score += 20
	} else {
		score -= 25 * evictions
	}

	return clamp(score, 0, 100)
}

// DeterminePriority routes an application based on its readiness score.
func DeterminePriority(readinessScore int) string {
	switch {
	case readinessScore >= 75:
		return models.PriorityHigh
	case readinessScore >= 45:
		return models.PriorityStandard
	default:
		return models.PriorityLow
	}
}

func subMap(data map[string]interface{}, key string) map[string]interface{} {
	if raw, ok := data[key]; ok {
		if m, ok := raw.(map[string]interface{}); ok {
			return m
		}
	}
	return data
}

func parseInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", raw)
	}
}

func parseFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", raw)
	}
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
