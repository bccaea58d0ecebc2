package api

import (
	"net/http"

	"goari/adapters/cluster"
	"goari/adapters/stats/permutation"
	"goari/app"
	"goari/domain/ari"
	"goari/domain/core"
	"goari/internal"
	"goari/internal/config"
	"goari/internal/errors"

	"github.com/gin-gonic/gin"
	"gonum.org/v1/gonum/mat"
)

// InferenceHandler serves inference requests over HTTP
type InferenceHandler struct {
	service  *app.InferenceService
	defaults config.InferenceConfig
	logger   *internal.Logger
}

// NewInferenceHandler creates a handler; defaults fill unset request fields
func NewInferenceHandler(service *app.InferenceService, defaults config.InferenceConfig) *InferenceHandler {
	return &InferenceHandler{
		service:  service,
		defaults: defaults,
		logger:   internal.DefaultLogger.With("api"),
	}
}

// Health reports liveness
func (h *InferenceHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Infer runs all-resolutions inference on raw observations
func (h *InferenceHandler) Infer(c *gin.Context) {
	var body InferRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, errors.Wrap(errors.InvalidInput(err.Error()), "invalid request body"))
		return
	}

	req, err := h.buildRequest(body)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.service.Infer(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewInferResponse(result))
}

// InferPValues runs parametric inference on p-values computed elsewhere
func (h *InferenceHandler) InferPValues(c *gin.Context) {
	var body PValueRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondError(c, errors.Wrap(errors.InvalidInput(err.Error()), "invalid request body"))
		return
	}

	shape := ari.Shape(body.Shape)
	if len(shape) == 0 {
		shape = ari.Shape{len(body.PValues)}
	}
	p, err := ari.MapFrom(shape, body.PValues)
	if err != nil {
		h.respondError(c, err)
		return
	}
	grid, err := ari.ParseGrid(body.Thresholds)
	if err != nil {
		h.respondError(c, err)
		return
	}
	adjacency, err := cluster.AdjacencyForShape(shape, body.Edges, body.Vertices)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.service.InferFromPValues(c.Request.Context(), app.PValueRequest{
		PValues:   p,
		Alpha:     h.alpha(body.Alpha),
		Grid:      grid,
		Adjacency: adjacency,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewInferResponse(result))
}

func (h *InferenceHandler) buildRequest(body InferRequest) (app.InferenceRequest, error) {
	groups := make([]*mat.Dense, len(body.Groups))
	for i, g := range body.Groups {
		m, err := denseFromRows(g)
		if err != nil {
			return app.InferenceRequest{}, errors.Wrapf(err, "group %d", i)
		}
		groups[i] = m
	}
	_, locations := groups[0].Dims()
	shape := ari.Shape(body.Shape)
	if len(shape) == 0 {
		shape = ari.Shape{locations}
	}
	samples, err := ari.NewSamples(shape, groups...)
	if err != nil {
		return app.InferenceRequest{}, err
	}

	tail, err := ari.ParseTail(body.Tail)
	if err != nil {
		return app.InferenceRequest{}, err
	}
	method, err := ari.ParseMethod(body.Method)
	if err != nil {
		return app.InferenceRequest{}, err
	}
	grid, err := ari.ParseGrid(body.Thresholds)
	if err != nil {
		return app.InferenceRequest{}, err
	}
	statfun, err := permutation.NamedStatFunc(body.Statistic, tail)
	if err != nil {
		return app.InferenceRequest{}, err
	}
	adjacency, err := cluster.AdjacencyForShape(shape, body.Edges, body.Vertices)
	if err != nil {
		return app.InferenceRequest{}, err
	}

	permutations := body.Permutations
	if permutations == 0 {
		permutations = h.defaults.Permutations
	}
	seed := body.Seed
	if seed == nil {
		seed = h.defaults.Seed
	}
	return app.InferenceRequest{
		Samples:      samples,
		Alpha:        h.alpha(body.Alpha),
		Tail:         tail,
		Method:       method,
		Permutations: permutations,
		Grid:         grid,
		Seed:         seed,
		Shift:        body.Shift,
		StatFunc:     statfun,
		Adjacency:    adjacency,
	}, nil
}

func (h *InferenceHandler) alpha(requested *float64) float64 {
	if requested != nil {
		return *requested
	}
	return h.defaults.Alpha
}

func (h *InferenceHandler) respondError(c *gin.Context, err error) {
	appErr := errors.FromDomain(err)
	status := statusFor(appErr.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		h.logger.Debug("%s %s rejected: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": appErr.Code})
}

func statusFor(code string) int {
	switch code {
	case errors.CodeInvalidInput, errors.CodeInvalidParameter:
		return http.StatusBadRequest
	case errors.CodeDegenerateInput:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, core.NewError(core.ErrInvalidGroups, "group has no observations")
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, core.NewError(core.ErrInvalidGroups,
				"observation %d has %d locations, expected %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}
