package entities

// ActionPlan describes what the grower should do about a diagnosis.
type ActionPlan struct {
	Immediate string `json:"immediate"`
	ShortTerm string `json:"short_term"`
}

// Treatments lists organic and chemical options for a diagnosis.
type Treatments struct {
	Organic  string `json:"organic"`
	Chemical string `json:"chemical"`
}

// Prediction is the diagnosis returned by the disease-detection endpoint.
type Prediction struct {
	Disease     string     `json:"disease"`
	Confidence  float64    `json:"confidence"`
	Severity    string     `json:"severity"`
	Stage       string     `json:"stage"`
	YieldImpact string     `json:"yield_impact"`
	SpreadRisk  string     `json:"spread_risk"`
	Recovery    string     `json:"recovery"`
	Symptoms    []string   `json:"symptoms"`
	ActionPlan  ActionPlan `json:"action_plan"`
	Treatments  Treatments `json:"treatments"`
	// Degraded is set when the upstream pool was exhausted and the
	// fallback diagnosis was returned instead of a model result.
	Degraded bool `json:"degraded,omitempty"`
}
