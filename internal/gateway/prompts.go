package gateway

import (
	"fmt"
	"strings"
)

// Mode selects which review the hosted model performs.
type Mode string

const (
	ModeTechnicalQuality Mode = "technical_quality"
	ModeAnatomy          Mode = "anatomy"
	ModePattern          Mode = "pattern"
	ModeReport           Mode = "report"
)

// ValidMode reports whether m names a supported analysis mode.
func ValidMode(m Mode) bool {
	switch m {
	case ModeTechnicalQuality, ModeAnatomy, ModePattern, ModeReport:
		return true
	}
	return false
}

// Sampling parameters per mode, pinned from the reference material: the
// report mode runs cooler and with a larger token budget than the rest.
const (
	defaultTemperature = 0.4
	patternTemperature = 0.5
	reportTemperature  = 0.3

	defaultMaxOutputTokens = 2048
	reportMaxOutputTokens  = 3000
)

const technicalQualityPrompt = `You are an expert radiologist evaluating the technical quality of a chest X-ray.

Please assess the following technical parameters:

1. POSITIONING:
   - Is the patient properly centered?
   - Are spinous processes midline between clavicular heads?
   - Are scapulae adequately rotated laterally?
   - Rate: Excellent/Good/Fair/Poor

2. PENETRATION:
   - Are vertebral bodies faintly visible through the mediastinum?
   - Are lung fields appropriately gray (not too dark or light)?
   - Can you see vascular markings clearly?
   - Rate: Excellent/Good/Fair/Poor

3. INSPIRATION:
   - Is the right hemidiaphragm at the 6th anterior rib?
   - Or at the 10th posterior rib at mid-clavicular line?
   - Is there adequate lung expansion?
   - Rate: Excellent/Good/Fair/Poor

4. MOTION:
   - Are rib cortices sharp?
   - Are vessel margins well-defined?
   - Are diaphragm contours sharp?
   - Rate: Excellent/Good/Fair/Poor

Provide your assessment in a structured format with overall quality rating and specific recommendations for improvement if needed.`

const patternPrompt = `You are an expert radiologist analyzing a chest X-ray for diagnostic patterns.

Identify the PRIMARY RADIOGRAPHIC PATTERN(S):

1. INTERSTITIAL PATTERNS:
   - Reticular (fine lines, honeycombing)
   - Nodular (small nodules)
   - Reticulonodular (combination)

2. AIR SPACE PATTERNS:
   - Consolidation (air bronchograms)
   - Ground glass
   - Cavitation

3. DISTRIBUTION:
   - Upper vs lower zones
   - Central vs peripheral
   - Focal vs diffuse
   - Unilateral vs bilateral

4. PROVIDE DIFFERENTIAL DIAGNOSIS:
   - List 3-5 most likely diagnoses
   - Rank by probability
   - Explain key distinguishing features

5. SUGGEST ADDITIONAL WORKUP:
   - CT scan
   - Laboratory tests
   - Clinical correlation needed

Format your response clearly with headings for each section.`

// regionPrompts drive the systematic anatomy review, one prompt per region.
var regionPrompts = map[string]string{
	"chest_wall": `Analyze the CHEST WALL on this chest X-ray:
- Rib integrity (fractures, lesions)
- Soft tissue abnormalities
- Breast shadows (if visible)
- Subcutaneous emphysema
- Surgical clips or hardware
Provide detailed findings.`,

	"mediastinum": `Analyze the MEDIASTINUM on this chest X-ray:
- Heart size (cardiothoracic ratio)
- Heart borders and contours
- Aortic arch contour
- Mediastinal width
- Tracheal position
- Any masses or widening
Provide detailed findings.`,

	"hila": `Analyze the HILA on this chest X-ray:
- Hilar size (enlarged, normal, small)
- Hilar density
- Hilar position (right should be lower than left)
- Lymphadenopathy
- Mass vs vascular structures
Provide detailed findings.`,

	"lungs": `Analyze the LUNGS on this chest X-ray:
- Lung volumes
- Parenchymal opacities (air space vs interstitial)
- Distribution pattern
- Nodules or masses
- Cavitations
- Hyperinflation or atelectasis
Provide detailed findings with differential diagnosis.`,

	"airways": `Analyze the AIRWAYS on this chest X-ray:
- Trachea position and caliber
- Bronchi visualization
- Air bronchograms
- Bronchial wall thickening
- Evidence of bronchiectasis
Provide detailed findings.`,

	"pleura": `Analyze the PLEURA AND DIAPHRAGM on this chest X-ray:
- Pleural effusions (blunting, meniscus sign)
- Pneumothorax (pleural line, deep sulcus)
- Pleural thickening or calcification
- Diaphragm position and contour
- Costophrenic angles
Provide detailed findings.`,
}

const reportPromptTemplate = `Generate a comprehensive radiology report for this chest X-ray.

Clinical History: %s

Use the following structure:

EXAMINATION: Chest X-ray, PA and lateral views

COMPARISON: [State if comparison available]

TECHNICAL FACTORS:
- Quality assessment (positioning, penetration, inspiration)

FINDINGS:

Support Devices/Lines:
[Describe any tubes, lines, devices]

Chest Wall:
[Evaluate soft tissues, bones]

Mediastinum:
- Heart size: [CTR measurement if possible]
- Mediastinal contours: [Normal/abnormal]

Hila:
[Describe hilar structures]

Lungs:
[Detailed lung parenchyma description]
- Right lung:
- Left lung:

Pleura:
[Effusion, pneumothorax, thickening]

Diaphragm:
[Position, contour]

IMPRESSION:
1. [Primary finding]
2. [Secondary findings]
3. [Recommendations]

Use professional medical terminology and be specific in measurements when possible.`

// buildPrompt returns the prompt text and sampling parameters for a mode.
// The anatomy mode is keyed by region; unknown regions fall back to the
// lungs review, matching the reference behavior.
func buildPrompt(mode Mode, region, clinicalHistory string) (string, float64, int, error) {
	switch mode {
	case ModeTechnicalQuality:
		return technicalQualityPrompt, defaultTemperature, defaultMaxOutputTokens, nil
	case ModePattern:
		return patternPrompt, patternTemperature, defaultMaxOutputTokens, nil
	case ModeAnatomy:
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(region)), " ", "_")
		if key == "pleura_and_diaphragm" {
			key = "pleura"
		}
		prompt, ok := regionPrompts[key]
		if !ok {
			prompt = regionPrompts["lungs"]
		}
		return prompt, defaultTemperature, defaultMaxOutputTokens, nil
	case ModeReport:
		history := strings.TrimSpace(clinicalHistory)
		if history == "" {
			history = "Not provided"
		}
		return fmt.Sprintf(reportPromptTemplate, history), reportTemperature, reportMaxOutputTokens, nil
	default:
		return "", 0, 0, fmt.Errorf("unsupported analysis mode: %q", mode)
	}
}
