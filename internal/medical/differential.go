package medical

// PatternSelection records which radiographic patterns and distributions a
// trainee identified on the film.
type PatternSelection struct {
	Reticular       bool `json:"reticular"`
	Nodular         bool `json:"nodular"`
	Reticulonodular bool `json:"reticulonodular"`
	Honeycombing    bool `json:"honeycombing"`
	Consolidation   bool `json:"consolidation"`
	GroundGlass     bool `json:"ground_glass"`
	Cavitation      bool `json:"cavitation"`
	Miliary         bool `json:"miliary"`

	UpperZone  bool `json:"upper_zone"`
	LowerZone  bool `json:"lower_zone"`
	Peripheral bool `json:"peripheral"`
	Perihilar  bool `json:"perihilar"`
}

// Differential is one candidate diagnosis with its distinguishing feature.
type Differential struct {
	Diagnosis string `json:"diagnosis"`
	Rationale string `json:"rationale"`
}

// GenerateDifferential expands a pattern selection into candidate
// diagnoses. The rules are pinned from the reference teaching tables;
// entries repeat when several patterns point at the same disease, which is
// deliberate (repetition signals a stronger candidate to the learner).
func GenerateDifferential(sel PatternSelection) []Differential {
	var out []Differential

	if sel.Reticular && sel.LowerZone {
		out = append(out,
			Differential{"UIP/IPF", "Usual interstitial pneumonia - honeycombing, basal"},
			Differential{"NSIP", "Non-specific interstitial pneumonia"},
			Differential{"Asbestosis", "Occupational exposure history"},
			Differential{"Collagen vascular disease", "RA, scleroderma, etc."},
		)
	}

	if sel.Reticular && sel.UpperZone {
		out = append(out,
			Differential{"Sarcoidosis", "Upper lobe, nodular, hilar LAD"},
			Differential{"Tuberculosis", "Apical, cavitation possible"},
			Differential{"Silicosis", "Occupational exposure"},
		)
	}

	if sel.Nodular && sel.UpperZone {
		out = append(out,
			Differential{"Tuberculosis", "Apical location, may cavitate"},
			Differential{"Sarcoidosis", "Perilymphatic distribution"},
			Differential{"Silicosis", "Coal worker's pneumoconiosis"},
			Differential{"Langerhans cell histiocytosis", "Cystic changes in smokers"},
		)
	}

	if sel.Consolidation {
		out = append(out,
			Differential{"Pneumonia", "Bacterial - air bronchograms"},
			Differential{"Pulmonary edema", "Perihilar, bilateral"},
			Differential{"Hemorrhage", "Diffuse, often trauma/vasculitis"},
			Differential{"ARDS", "Bilateral, hypoxemia"},
		)
	}

	if sel.Perihilar {
		out = append(out,
			Differential{"Sarcoidosis", "Bilateral hilar LAD"},
			Differential{"Pulmonary edema", "Bat wing pattern"},
			Differential{"Lymphoma", "Mass effect"},
		)
	}

	if sel.Miliary {
		out = append(out,
			Differential{"Miliary TB", "Immunocompromised, exposure"},
			Differential{"Fungal infection", "Histoplasmosis, coccidioidomycosis"},
			Differential{"Metastases", "Thyroid, melanoma, renal"},
			Differential{"Sarcoidosis", "Less common presentation"},
		)
	}

	if sel.Cavitation {
		out = append(out,
			Differential{"Tuberculosis", "Primary consideration"},
			Differential{"Lung abscess", "Anaerobic, aspiration"},
			Differential{"Squamous cell carcinoma", "Primary lung cancer"},
			Differential{"Wegener's granulomatosis", "Multiple cavities"},
		)
	}

	return out
}
