// Package scoring holds the pure damage-probability and priority models.
// Both are stateless functions; the factor breakdowns they return are
// persisted next to the final numbers so every score stays auditable.
package scoring

import "math"

// ModelVersion tracks the damage model for debugging and analysis.
// Bump this when changing scoring logic significantly.
const ModelVersion = "2026-v1"

// Roof type values as stored on properties. Unknown values fall back to a
// neutral multiplier.
const (
	RoofTypeWood           = "wood"
	RoofTypeAsphaltShingle = "asphalt_shingle"
	RoofTypeFlat           = "flat"
	RoofTypeTile           = "tile"
	RoofTypeMetal          = "metal"
)

// DamageFactors is the persisted breakdown of a damage probability. Each
// physical driver stays independently visible and tunable.
type DamageFactors struct {
	BaseProbability float64 `json:"baseProbability"`
	DistanceFactor  float64 `json:"distanceFactor"`
	RoofAgeFactor   float64 `json:"roofAgeFactor"`
	RoofTypeFactor  float64 `json:"roofTypeFactor"`
	ModelVersion    string  `json:"modelVersion"`
}

// DamageProbability estimates the probability of roof damage for a property
// at the given distance from the storm center. The result is always in
// (0, 0.99]; the 0.99 ceiling models irreducible uncertainty.
func DamageProbability(hailSizeInches, distanceMiles float64, roofAgeYears int, roofType string) (float64, DamageFactors) {
	base := baseProbability(hailSizeInches)

	// Probability is never attenuated below 30% of base regardless of distance.
	distanceFactor := math.Max(0.3, 1.0-distanceMiles*0.1)

	ageFactor := roofAgeFactor(roofAgeYears)
	typeFactor := roofTypeFactor(roofType)

	probability := math.Min(0.99, base*distanceFactor*ageFactor*typeFactor)

	return probability, DamageFactors{
		BaseProbability: base,
		DistanceFactor:  distanceFactor,
		RoofAgeFactor:   ageFactor,
		RoofTypeFactor:  typeFactor,
		ModelVersion:    ModelVersion,
	}
}

// HailSizeAtDistance attenuates the reported hail size linearly with distance
// from the storm center, bottoming out at zero.
func HailSizeAtDistance(hailSizeInches, distanceMiles float64) float64 {
	return math.Max(0, hailSizeInches-distanceMiles*0.1)
}

func baseProbability(hailSizeInches float64) float64 {
	switch {
	case hailSizeInches >= 2.5:
		return 0.95
	case hailSizeInches >= 2.0:
		return 0.85
	case hailSizeInches >= 1.5:
		return 0.70
	case hailSizeInches >= 1.0:
		return 0.50
	case hailSizeInches >= 0.75:
		return 0.30
	default:
		return 0.15
	}
}

func roofAgeFactor(roofAgeYears int) float64 {
	switch {
	case roofAgeYears >= 20:
		return 1.3
	case roofAgeYears >= 15:
		return 1.2
	case roofAgeYears >= 10:
		return 1.1
	case roofAgeYears >= 5:
		return 1.0
	default:
		return 0.9
	}
}

func roofTypeFactor(roofType string) float64 {
	switch roofType {
	case RoofTypeWood:
		return 1.3
	case RoofTypeAsphaltShingle:
		return 1.2
	case RoofTypeFlat:
		return 1.0
	case RoofTypeTile:
		return 0.8
	case RoofTypeMetal:
		return 0.7
	default:
		return 1.0
	}
}
