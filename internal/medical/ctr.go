package medical

import (
	apperrors "github.com/shivesh2334-ai/cxr-learning-app-2/internal/apperrors"
)

// CTRMeasurement holds the two silhouette widths measured on a PA film and
// their derived cardiothoracic ratio.
type CTRMeasurement struct {
	CardiacWidth  float64 `json:"cardiac_width"`
	ThoracicWidth float64 `json:"thoracic_width"`
	Ratio         float64 `json:"ratio"`
}

// CTRCategory is the discrete band a ratio falls into.
type CTRCategory string

const (
	CTRNormal               CTRCategory = "Normal"
	CTRBorderline           CTRCategory = "Borderline"
	CTRMildCardiomegaly     CTRCategory = "Mild cardiomegaly"
	CTRModerateCardiomegaly CTRCategory = "Moderate cardiomegaly"
	CTRSevereCardiomegaly   CTRCategory = "Severe cardiomegaly"
)

// Band edges follow the teaching convention for PA films (50/55/60/70
// percent). They encode domain convention, not computed logic, and are
// pinned rather than derived.
const (
	ctrNormalUpper     = 0.50
	ctrBorderlineUpper = 0.55
	ctrMildUpper       = 0.60
	ctrModerateUpper   = 0.70
)

// ComputeCTR derives the cardiothoracic ratio from the two widths. Both
// inputs must be measured in the same unit. A non-positive thoracic width
// or a negative input is rejected outright; no best-effort value is ever
// returned.
func ComputeCTR(cardiacWidth, thoracicWidth float64) (CTRMeasurement, error) {
	if thoracicWidth <= 0 {
		return CTRMeasurement{}, apperrors.NewMeasurementError(
			"thoracic width must be positive", nil).
			WithDetails("thoracic_width=%g", thoracicWidth)
	}
	if cardiacWidth < 0 {
		return CTRMeasurement{}, apperrors.NewMeasurementError(
			"cardiac width must not be negative", nil).
			WithDetails("cardiac_width=%g", cardiacWidth)
	}
	return CTRMeasurement{
		CardiacWidth:  cardiacWidth,
		ThoracicWidth: thoracicWidth,
		Ratio:         cardiacWidth / thoracicWidth,
	}, nil
}

// CategorizeCTR maps a measurement into its band. Bands are contiguous and
// exhaustive over [0, inf): lower bound inclusive, upper bound exclusive.
func CategorizeCTR(m CTRMeasurement) CTRCategory {
	switch {
	case m.Ratio < ctrNormalUpper:
		return CTRNormal
	case m.Ratio < ctrBorderlineUpper:
		return CTRBorderline
	case m.Ratio < ctrMildUpper:
		return CTRMildCardiomegaly
	case m.Ratio < ctrModerateUpper:
		return CTRModerateCardiomegaly
	default:
		return CTRSevereCardiomegaly
	}
}
