// Package ari holds the value types shared by the all-resolutions inference
// engine: maps over a location lattice, cluster masks, tails, methods and
// threshold grids.
package ari

import (
	"strconv"
	"strings"

	"goari/domain/core"

	"gonum.org/v1/gonum/mat"
)

// Shape is the shape of one observation (the sample shape). Maps are stored
// row-major, last axis fastest.
type Shape []int

// Size returns the number of locations described by the shape
func (s Shape) Size() int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Equal reports whether two shapes have identical axes
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Validate checks that the shape has at least one axis and no empty axis
func (s Shape) Validate() error {
	if len(s) == 0 {
		return core.NewError(core.ErrInvalidShape, "shape has no axes")
	}
	for i, d := range s {
		if d < 1 {
			return core.NewError(core.ErrInvalidShape, "axis %d has length %d", i, d)
		}
	}
	return nil
}

// Strides returns the row-major stride of every axis
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s[i]
	}
	return strides
}

// Clone returns an independent copy
func (s Shape) Clone() Shape {
	return append(Shape(nil), s...)
}

// Map is a numeric array over the sample shape: a StatisticMap of p-values
// or a TDPMap of true discovery proportions.
type Map struct {
	Shape  Shape     `json:"shape"`
	Values []float64 `json:"values"`
}

// MapFrom wraps values in a map after checking the length against the shape
func MapFrom(shape Shape, values []float64) (Map, error) {
	if err := shape.Validate(); err != nil {
		return Map{}, err
	}
	if len(values) != shape.Size() {
		return Map{}, core.NewError(core.ErrInvalidShape,
			"%d values do not fill shape %v", len(values), []int(shape))
	}
	return Map{Shape: shape.Clone(), Values: append([]float64(nil), values...)}, nil
}

// Len returns the number of locations
func (m Map) Len() int {
	return len(m.Values)
}

// Mask is a boolean cluster mask over the sample shape
type Mask struct {
	Shape Shape  `json:"shape"`
	Bits  []bool `json:"bits"`
}

// NewMask builds a mask with the given flat indices set
func NewMask(shape Shape, indices []int) (Mask, error) {
	bits := make([]bool, shape.Size())
	for _, idx := range indices {
		if idx < 0 || idx >= len(bits) {
			return Mask{}, core.NewError(core.ErrInvalidMask,
				"index %d outside %d locations", idx, len(bits))
		}
		bits[idx] = true
	}
	return Mask{Shape: shape.Clone(), Bits: bits}, nil
}

// Indices returns the flat indices that are set, ascending
func (m Mask) Indices() []int {
	var out []int
	for i, b := range m.Bits {
		if b {
			out = append(out, i)
		}
	}
	return out
}

// Size returns the number of locations inside the mask
func (m Mask) Size() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Tail selects the alternative hypothesis
type Tail int

const (
	TailLess     Tail = -1
	TailTwoSided Tail = 0
	TailGreater  Tail = 1
)

// ParseTail accepts the names and the numeric tokens (-1, 0, 1)
func ParseTail(s string) (Tail, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "two-sided", "two_sided", "twosided":
		return TailTwoSided, nil
	case "1", "greater":
		return TailGreater, nil
	case "-1", "less":
		return TailLess, nil
	}
	return 0, core.NewError(core.ErrInvalidTail, "unrecognized tail %q", s)
}

// Validate rejects tails outside {-1, 0, 1}
func (t Tail) Validate() error {
	switch t {
	case TailLess, TailTwoSided, TailGreater:
		return nil
	}
	return core.NewError(core.ErrInvalidTail, "unrecognized tail %d", int(t))
}

func (t Tail) String() string {
	switch t {
	case TailLess:
		return "less"
	case TailTwoSided:
		return "two-sided"
	case TailGreater:
		return "greater"
	}
	return "tail(" + strconv.Itoa(int(t)) + ")"
}

// Method selects the TDP oracle
type Method string

const (
	MethodParametric  Method = "parametric"
	MethodPermutation Method = "permutation"
)

// ParseMethod maps a method name to a Method; empty means parametric
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "", MethodParametric:
		return MethodParametric, nil
	case MethodPermutation:
		return MethodPermutation, nil
	}
	return "", core.NewError(core.ErrInvalidParameter, "method must be %q or %q, got %q",
		MethodParametric, MethodPermutation, s)
}

// ValidateAlpha checks that alpha is a probability
func ValidateAlpha(alpha float64) error {
	if !(alpha >= 0 && alpha <= 1) {
		return core.NewError(core.ErrInvalidAlpha, "alpha should be between 0 and 1, got %v", alpha)
	}
	return nil
}

// StatFunc computes one p-value per location from observation groups, each
// group being observations x locations. It replaces the built-in statistic,
// must not retain the matrices it is given, and must be safe for concurrent
// use because realizations are evaluated in parallel.
type StatFunc func(groups []*mat.Dense) ([]float64, error)

// Samples are the observations feeding the permutation engine. One group is
// a one-sample (or paired) design, two groups an independent-samples design.
type Samples struct {
	Shape  Shape
	Groups []*mat.Dense
}

// NewSamples validates that every group has one column per location
func NewSamples(shape Shape, groups ...*mat.Dense) (Samples, error) {
	if err := shape.Validate(); err != nil {
		return Samples{}, err
	}
	if len(groups) == 0 {
		return Samples{}, core.NewError(core.ErrInvalidGroups, "no observation groups")
	}
	for i, g := range groups {
		if g == nil {
			return Samples{}, core.NewError(core.ErrInvalidGroups, "group %d is nil", i)
		}
		rows, cols := g.Dims()
		if cols != shape.Size() {
			return Samples{}, core.NewError(core.ErrInvalidGroups,
				"group %d has %d locations, shape %v has %d", i, cols, []int(shape), shape.Size())
		}
		if rows < 1 {
			return Samples{}, core.NewError(core.ErrInvalidGroups, "group %d has no observations", i)
		}
	}
	return Samples{Shape: shape.Clone(), Groups: groups}, nil
}

// Locations returns the number of tested locations
func (s Samples) Locations() int {
	return s.Shape.Size()
}

// Observations returns the total observation count over all groups
func (s Samples) Observations() int {
	n := 0
	for _, g := range s.Groups {
		r, _ := g.Dims()
		n += r
	}
	return n
}
