package vitals

import "math"

// BMICategory is the clinical bracket a BMI value falls into.
type BMICategory string

const (
	BMIUnknown     BMICategory = "unknown"
	BMIUnderweight BMICategory = "underweight"
	BMINormal      BMICategory = "normal"
	BMIOverweight  BMICategory = "overweight"
	BMIObese       BMICategory = "obese"
)

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeBMI returns weight / height² rounded to two decimals, or nil when the
// height is missing or not positive, or when the rounded result is not a
// positive finite number.
func ComputeBMI(weightKg float64, heightM *float64) *float64 {
	if heightM == nil || *heightM <= 0 || !isFinite(*heightM) || !isFinite(weightKg) {
		return nil
	}
	bmi := round2(weightKg / (*heightM * *heightM))
	if !isFinite(bmi) || bmi <= 0 {
		return nil
	}
	return &bmi
}

// ClassifyBMI maps a BMI value onto the standard adult brackets:
// underweight < 18.5 <= normal < 25 <= overweight < 30 <= obese.
// Non-finite or non-positive input is BMIUnknown.
func ClassifyBMI(bmi float64) BMICategory {
	switch {
	case !isFinite(bmi) || bmi <= 0:
		return BMIUnknown
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// CelsiusToFahrenheit converts and rounds to two decimals.
func CelsiusToFahrenheit(c float64) float64 {
	return round2(c*9/5 + 32)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
