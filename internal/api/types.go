package api

import "goari/domain/ari"

// InferRequest is the JSON body of POST /api/v1/infer
type InferRequest struct {
	// Groups holds one observations x locations array per group
	Groups       [][][]float64 `json:"groups" binding:"required,min=1"`
	Shape        []int         `json:"shape"`
	Alpha        *float64      `json:"alpha"`
	Tail         string        `json:"tail"`
	Method       string        `json:"method"`
	Permutations int           `json:"n_permutations"`
	Seed         *int64        `json:"seed"`
	Thresholds   string        `json:"thresholds"` // "auto", "all" or "0.01,0.001"
	Shift        int           `json:"shift"`
	Statistic    string        `json:"statistic"` // "", "ttest" or "welch"
	Edges        [][2]int      `json:"edges"`
	Vertices     int           `json:"n_vertices"`
}

// PValueRequest is the JSON body of POST /api/v1/infer/pvalues
type PValueRequest struct {
	PValues    []float64 `json:"p_values" binding:"required,min=1"`
	Shape      []int     `json:"shape"`
	Alpha      *float64  `json:"alpha"`
	Thresholds string    `json:"thresholds"`
	Edges      [][2]int  `json:"edges"`
	Vertices   int       `json:"n_vertices"`
}

// InferResponse reports one inference run; clusters are flat index lists
type InferResponse struct {
	RunID      string      `json:"run_id"`
	Method     ari.Method  `json:"method"`
	Alpha      float64     `json:"alpha"`
	Seed       int64       `json:"seed"`
	PValues    ari.Map     `json:"p_values"`
	TDP        ari.Map     `json:"tdp"`
	Clusters   [][]int     `json:"clusters"`
	Thresholds int         `json:"thresholds_searched"`
	Advisories []string    `json:"advisories,omitempty"`
	Summary    ari.Summary `json:"summary"`
}

// NewInferResponse flattens a result for the wire
func NewInferResponse(result *ari.Result) InferResponse {
	clusters := make([][]int, 0, len(result.Clusters))
	for _, m := range result.Clusters {
		clusters = append(clusters, m.Indices())
	}
	return InferResponse{
		RunID:      result.RunID.String(),
		Method:     result.Method,
		Alpha:      result.Alpha,
		Seed:       result.Seed,
		PValues:    result.PValues,
		TDP:        result.TDP,
		Clusters:   clusters,
		Thresholds: result.Thresholds,
		Advisories: result.Advisories,
		Summary:    result.Summary,
	}
}
