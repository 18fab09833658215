package quality

import (
	"gonum.org/v1/gonum/stat"

	"github.com/shivesh2334-ai/cxr-learning-app-2/internal/preprocess"
)

// Thresholds bound the locally computable film-quality checks. Intensities
// are on the normalized [0,1] scale.
type Thresholds struct {
	// Penetration proxies: mean intensity outside this window suggests an
	// under- or over-penetrated film.
	MinMeanIntensity float64
	MaxMeanIntensity float64

	// Contrast: intensity standard deviation below this reads as flat.
	MinContrast float64

	// Sharpness: Laplacian variance below this suggests motion blur.
	MinLaplacianVariance float64
}

// DefaultThresholds returns bounds tuned for digitized PA chest films.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinMeanIntensity:     0.15,
		MaxMeanIntensity:     0.85,
		MinContrast:          0.08,
		MinLaplacianVariance: 0.0015,
	}
}

// Issue is one failed check with enough context for an actionable message.
type Issue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error" or "warning"
	ActualValue float64 `json:"actual_value"`
	Threshold   float64 `json:"threshold"`
}

// Report summarizes the technical-quality precheck that runs locally
// before a film is sent for model-based review.
type Report struct {
	MeanIntensity     float64 `json:"mean_intensity"`
	Contrast          float64 `json:"contrast"`
	LaplacianVariance float64 `json:"laplacian_variance"`

	Underpenetrated bool `json:"underpenetrated"`
	Overpenetrated  bool `json:"overpenetrated"`
	LowContrast     bool `json:"low_contrast"`
	MotionBlur      bool `json:"motion_blur"`

	Issues     []Issue `json:"issues,omitempty"`
	Acceptable bool    `json:"acceptable"`
}

// Assessor runs the deterministic film-quality checks.
type Assessor struct {
	thresholds Thresholds
}

func NewAssessor() *Assessor {
	return &Assessor{thresholds: DefaultThresholds()}
}

func NewAssessorWithThresholds(t Thresholds) *Assessor {
	return &Assessor{thresholds: t}
}

// Assess computes intensity statistics and the Laplacian sharpness measure
// over the luminance plane and flags anything outside the thresholds.
func (a *Assessor) Assess(img *preprocess.NormalizedImage) Report {
	lum := luminancePlane(img)

	report := Report{
		MeanIntensity:     stat.Mean(lum, nil),
		Contrast:          stat.StdDev(lum, nil),
		LaplacianVariance: laplacianVariance(lum, img.Width, img.Height),
	}

	t := a.thresholds
	if report.MeanIntensity < t.MinMeanIntensity {
		report.Underpenetrated = true
		report.Issues = append(report.Issues, Issue{
			Type:        "underpenetration",
			Message:     "Film is too dark overall; mediastinal detail will be lost. Re-expose or adjust windowing.",
			Severity:    "error",
			ActualValue: report.MeanIntensity,
			Threshold:   t.MinMeanIntensity,
		})
	} else if report.MeanIntensity > t.MaxMeanIntensity {
		report.Overpenetrated = true
		report.Issues = append(report.Issues, Issue{
			Type:        "overpenetration",
			Message:     "Film is too light overall; lung markings will be washed out. Re-expose or adjust windowing.",
			Severity:    "error",
			ActualValue: report.MeanIntensity,
			Threshold:   t.MaxMeanIntensity,
		})
	}

	if report.Contrast < t.MinContrast {
		report.LowContrast = true
		report.Issues = append(report.Issues, Issue{
			Type:        "low_contrast",
			Message:     "Film has very little intensity spread. Consider contrast enhancement before review.",
			Severity:    "warning",
			ActualValue: report.Contrast,
			Threshold:   t.MinContrast,
		})
	}

	if report.LaplacianVariance < t.MinLaplacianVariance {
		report.MotionBlur = true
		report.Issues = append(report.Issues, Issue{
			Type:        "motion_blur",
			Message:     "Edges are soft; rib cortices and vessel margins may be blurred by motion.",
			Severity:    "warning",
			ActualValue: report.LaplacianVariance,
			Threshold:   t.MinLaplacianVariance,
		})
	}

	report.Acceptable = !hasError(report.Issues)
	return report
}

// luminancePlane flattens the grid to one sample per pixel using the same
// BT.601 weights as the grayscale stage.
func luminancePlane(img *preprocess.NormalizedImage) []float64 {
	n := img.Width * img.Height
	lum := make([]float64, n)
	if img.Channels == 1 {
		copy(lum, img.Pix)
		return lum
	}
	for i := 0; i < n; i++ {
		base := i * img.Channels
		lum[i] = 0.299*img.Pix[base] + 0.587*img.Pix[base+1] + 0.114*img.Pix[base+2]
	}
	return lum
}

// laplacianVariance applies the 4-neighbor Laplacian kernel over the
// interior and returns the response variance.
func laplacianVariance(lum []float64, width, height int) float64 {
	if width < 3 || height < 3 {
		return 0
	}

	data := make([]float64, 0, (width-2)*(height-2))
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			center := lum[y*width+x]
			top := lum[(y-1)*width+x]
			bottom := lum[(y+1)*width+x]
			left := lum[y*width+x-1]
			right := lum[y*width+x+1]
			data = append(data, -4*center+top+bottom+left+right)
		}
	}
	return stat.Variance(data, nil)
}

func hasError(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}
