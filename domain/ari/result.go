package ari

import (
	"goari/domain/core"
)

// Summary condenses a TDP map
type Summary struct {
	MaxTDP    float64 `json:"max_tdp"`
	MeanTDP   float64 `json:"mean_tdp"`
	Confident int     `json:"confident_locations"`
}

// Result is the output of one inference call
type Result struct {
	RunID      core.RunID `json:"run_id"`
	Method     Method     `json:"method"`
	Alpha      float64    `json:"alpha"`
	Seed       int64      `json:"seed"`
	PValues    Map        `json:"p_values"`
	TDP        Map        `json:"tdp"`
	Clusters   []Mask     `json:"clusters"`
	Thresholds int        `json:"thresholds_searched"`
	Advisories []string   `json:"advisories,omitempty"`
	Summary    Summary    `json:"summary"`
}
