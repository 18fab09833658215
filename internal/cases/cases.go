package cases

// Case is one guided teaching case, disclosed to the trainee step by step:
// presentation, image, interpretation, then teaching points.
type Case struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Presentation string `json:"presentation"`
	History      string `json:"history"`
	Vitals       string `json:"vitals"`
	Labs         string `json:"labs"`

	Findings       []string `json:"findings"`
	Diagnosis      string   `json:"diagnosis"`
	LearningPoints []string `json:"learning_points"`

	// ImageRef locates the de-identified film in the configured case
	// store; empty for text-only cases.
	ImageRef string `json:"image_ref,omitempty"`
}

// library holds the built-in teaching cases. Content is pinned from the
// curriculum reference material.
var library = []Case{
	{
		ID:           "rll-pneumonia",
		Title:        "Right Lower Lobe Pneumonia",
		Presentation: "67-year-old male with fever, cough, and right-sided chest pain for 3 days.",
		History:      "History of COPD, current smoker (40 pack-years)",
		Vitals:       "T: 38.9C, HR: 105, RR: 24, O2 sat: 91% on room air",
		Labs:         "WBC 15,000, CRP elevated",
		Findings: []string{
			"Right lower lobe consolidation",
			"Air bronchograms present",
			"Silhouette sign - right heart border preserved, diaphragm obscured",
			"Small right pleural effusion",
		},
		Diagnosis: "Right lower lobe pneumonia with parapneumonic effusion",
		LearningPoints: []string{
			"RLL pneumonia affects posterior segment more than lateral",
			"Air bronchograms confirm air space disease",
			"Preserved right heart border rules out RML involvement",
			"Consider CURB-65 score for admission decision",
		},
	},
	{
		ID:           "chf",
		Title:        "Congestive Heart Failure",
		Presentation: "72-year-old female with progressive dyspnea and leg swelling over 1 week.",
		History:      "Known heart failure, medication non-compliance",
		Vitals:       "T: 37.1C, HR: 98, RR: 28, O2 sat: 88% on room air",
		Labs:         "BNP 1250, Cr 1.8",
		Findings: []string{
			"Cardiomegaly (CTR >60%)",
			"Bilateral perihilar opacities ('bat wing' pattern)",
			"Cephalization of pulmonary vessels",
			"Bilateral pleural effusions",
			"Kerley B lines at bases",
		},
		Diagnosis: "Acute decompensated heart failure with pulmonary edema",
		LearningPoints: []string{
			"Cardiogenic vs non-cardiogenic edema",
			"Perihilar distribution suggests cardiogenic",
			"Pleural effusions more common with heart failure",
			"Look for previous films to assess acuity",
		},
	},
	{
		ID:           "pneumothorax",
		Title:        "Spontaneous Pneumothorax",
		Presentation: "24-year-old tall, thin male with sudden onset left chest pain and SOB.",
		History:      "Previously healthy, non-smoker",
		Vitals:       "T: 37.0C, HR: 110, RR: 24, O2 sat: 93% on room air",
		Labs:         "Normal",
		Findings: []string{
			"Left pneumothorax (~30% collapse)",
			"Visible visceral pleural line",
			"Absent lung markings peripherally",
			"Trachea midline (no tension)",
			"No mediastinal shift",
		},
		Diagnosis: "Primary spontaneous pneumothorax",
		LearningPoints: []string{
			"Common in tall, thin young males",
			"Look for pleural line parallel to chest wall",
			"Assess size: measure at hilum level",
			"Tension PTX: tracheal deviation, hemidiaphragm depression",
		},
	},
}

// Library returns all built-in teaching cases.
func Library() []Case {
	out := make([]Case, len(library))
	copy(out, library)
	return out
}

// Find looks up a case by ID.
func Find(id string) (Case, bool) {
	for _, c := range library {
		if c.ID == id {
			return c, true
		}
	}
	return Case{}, false
}

// QuizQuestion is one self-assessment question with its explanation.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// Quiz returns the self-assessment questions.
func Quiz() []QuizQuestion {
	return []QuizQuestion{
		{
			Question: "What is the normal cardiothoracic ratio on a PA chest X-ray?",
			Options:  []string{"<40%", "<50%", "<60%", "<70%"},
			Correct:  1,
			Explanation: "The normal CTR on a PA view is <50%. On AP views, the heart may appear " +
				"larger due to magnification, so CTR <55% is acceptable.",
		},
		{
			Question: "Which of the following suggests good inspiration on a chest X-ray?",
			Options: []string{
				"Right hemidiaphragm at 4th anterior rib",
				"Right hemidiaphragm at 6th anterior rib",
				"Right hemidiaphragm at 8th anterior rib",
				"Right hemidiaphragm at 10th anterior rib",
			},
			Correct: 1,
			Explanation: "Good inspiration is indicated by the right hemidiaphragm at the 6th " +
				"anterior rib, or the 10th posterior rib at the mid-clavicular line.",
		},
		{
			Question: "The silhouette sign with loss of the right heart border suggests pathology in which location?",
			Options: []string{
				"Right upper lobe",
				"Right middle lobe",
				"Right lower lobe",
				"Left lingula",
			},
			Correct: 1,
			Explanation: "Loss of the right heart border indicates right middle lobe pathology. " +
				"The RML is anatomically adjacent to the right heart border.",
		},
		{
			Question: "Which pattern is most characteristic of interstitial pulmonary edema?",
			Options: []string{
				"Consolidation with air bronchograms",
				"Perihilar opacity with Kerley B lines",
				"Multiple cavitary lesions",
				"Miliary nodules",
			},
			Correct: 1,
			Explanation: "Interstitial edema classically shows perihilar bat-wing opacity, " +
				"cephalization of vessels, and Kerley B lines (short horizontal lines at lung bases).",
		},
	}
}
