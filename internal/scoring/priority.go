package scoring

import "math"

// DefaultPropertyValue is used when no county-level value is known.
const DefaultPropertyValue = 250000

// PriorityScore ranks an impact for sales outreach on a 1-100 scale. Damage
// likelihood alone is a poor proxy for expected commercial value, so asset
// value, storm recency, and contactability all contribute:
//
//   - up to 40 points from damage probability
//   - up to 20 points from property value ($25k per point)
//   - up to 25 points from recency, decaying to zero after 25 days
//   - 15 flat points when a phone number is known
//
// This score, not damage probability, is the sort key for lead promotion.
func PriorityScore(damageProbability float64, propertyValue, daysSinceStorm int, hasPhone bool) int {
	score := int(math.Floor(damageProbability * 40))

	score += min(20, propertyValue/25000)

	score += max(0, 25-daysSinceStorm)

	if hasPhone {
		score += 15
	}

	if score < 1 {
		return 1
	}
	if score > 100 {
		return 100
	}
	return score
}
