package medical

import (
	"strings"

	"github.com/arbovm/levenshtein"
)

// abbreviations maps lowercase shorthand to its canonical form.
var abbreviations = map[string]string{
	"rll": "RLL",
	"rul": "RUL",
	"rml": "RML",
	"lll": "LLL",
	"lul": "LUL",
	"ctr": "CTR",
	"pa":  "PA",
	"ap":  "AP",
	"cxr": "CXR",
	"ct":  "CT",
}

// FormatTerm normalizes common radiology shorthand to its conventional
// capitalization; unknown terms pass through untouched.
func FormatTerm(term string) string {
	if formatted, ok := abbreviations[strings.ToLower(term)]; ok {
		return formatted
	}
	return term
}

// AnatomicRegions lists the regions of the systematic review in reading
// order.
func AnatomicRegions() []string {
	return []string{
		"Chest Wall",
		"Mediastinum",
		"Hila",
		"Lungs",
		"Airways",
		"Pleura and Diaphragm",
	}
}

// TechnicalParameters lists the film quality criteria checked before any
// interpretation.
func TechnicalParameters() []string {
	return []string{
		"Positioning",
		"Penetration",
		"Inspiration",
		"Motion",
	}
}

// CanonicalRegion snaps free-form region input to the canonical review
// region, tolerating small typos (edit distance up to 2, case-insensitive).
func CanonicalRegion(input string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return "", false
	}

	best := ""
	bestDist := 3 // one past the accepted maximum
	for _, region := range AnatomicRegions() {
		d := levenshtein.Distance(strings.ToLower(region), needle)
		if d < bestDist {
			best = region
			bestDist = d
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}
