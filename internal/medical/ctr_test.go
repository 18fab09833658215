package medical

import (
	"math"
	"testing"

	apperrors "github.com/shivesh2334-ai/cxr-learning-app-2/internal/apperrors"
)

func TestComputeCTR(t *testing.T) {
	m, err := ComputeCTR(5, 10)
	if err != nil {
		t.Fatalf("Expected valid measurement, got %v", err)
	}
	if math.Abs(m.Ratio-0.5) > 1e-12 {
		t.Errorf("Expected ratio 0.5, got %f", m.Ratio)
	}
	if m.CardiacWidth != 5 || m.ThoracicWidth != 10 {
		t.Errorf("Expected inputs echoed back, got %+v", m)
	}
}

func TestComputeCTR_ZeroCardiacWidth(t *testing.T) {
	m, err := ComputeCTR(0, 10)
	if err != nil {
		t.Fatalf("Zero cardiac width is measurable, got %v", err)
	}
	if m.Ratio != 0 {
		t.Errorf("Expected ratio 0, got %f", m.Ratio)
	}
}

func TestComputeCTR_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		cardiac  float64
		thoracic float64
	}{
		{"zero thoracic width", 5, 0},
		{"negative thoracic width", 5, -10},
		{"negative cardiac width", -1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeCTR(tt.cardiac, tt.thoracic)
			if err == nil {
				t.Fatal("Expected measurement error")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeMeasurement) {
				t.Errorf("Expected measurement error type, got %v", err)
			}
		})
	}
}

func TestCategorizeCTR_Bands(t *testing.T) {
	tests := []struct {
		ratio    float64
		expected CTRCategory
	}{
		{0.0, CTRNormal},
		{0.35, CTRNormal},
		{0.4999, CTRNormal},
		{0.50, CTRBorderline},
		{0.5499, CTRBorderline},
		{0.55, CTRMildCardiomegaly},
		{0.5999, CTRMildCardiomegaly},
		{0.60, CTRModerateCardiomegaly},
		{0.6999, CTRModerateCardiomegaly},
		{0.70, CTRSevereCardiomegaly},
		{0.95, CTRSevereCardiomegaly},
		{1.2, CTRSevereCardiomegaly},
	}

	for _, tt := range tests {
		got := CategorizeCTR(CTRMeasurement{Ratio: tt.ratio})
		if got != tt.expected {
			t.Errorf("Ratio %.4f: expected %s, got %s", tt.ratio, tt.expected, got)
		}
	}
}

func TestCategorizeCTR_FromWidths(t *testing.T) {
	m, err := ComputeCTR(13, 20) // 0.65
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := CategorizeCTR(m); got != CTRModerateCardiomegaly {
		t.Errorf("Expected %s for ratio 0.65, got %s", CTRModerateCardiomegaly, got)
	}
}
