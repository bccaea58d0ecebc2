package ari

import (
	"strconv"
	"strings"

	"goari/domain/core"
)

// GridKind tags how the cluster-inclusion thresholds are chosen
type GridKind int

const (
	// GridAuto log-spaces thresholds between alpha and the smallest p-value
	GridAuto GridKind = iota
	// GridAll uses every observed p-value as a threshold
	GridAll
	// GridExplicit uses caller-supplied thresholds
	GridExplicit
)

// Grid is the threshold search grid
type Grid struct {
	Kind       GridKind
	Thresholds []float64
}

// AutoGrid returns the default log-spaced grid
func AutoGrid() Grid { return Grid{Kind: GridAuto} }

// AllGrid searches at every observed p-value
func AllGrid() Grid { return Grid{Kind: GridAll} }

// ExplicitGrid searches the given thresholds; a single value is a singleton grid
func ExplicitGrid(thresholds ...float64) Grid {
	return Grid{Kind: GridExplicit, Thresholds: append([]float64(nil), thresholds...)}
}

// Validate checks explicit thresholds are probabilities
func (g Grid) Validate() error {
	switch g.Kind {
	case GridAuto, GridAll:
		return nil
	case GridExplicit:
		if len(g.Thresholds) == 0 {
			return core.NewError(core.ErrInvalidThreshold, "explicit grid is empty")
		}
		for _, t := range g.Thresholds {
			if !(t >= 0 && t <= 1) {
				return core.NewError(core.ErrInvalidThreshold, "threshold %v is not a probability", t)
			}
		}
		return nil
	}
	return core.NewError(core.ErrInvalidThreshold, "unknown grid kind %d", int(g.Kind))
}

func (g Grid) String() string {
	switch g.Kind {
	case GridAuto:
		return "auto"
	case GridAll:
		return "all"
	}
	parts := make([]string, len(g.Thresholds))
	for i, t := range g.Thresholds {
		parts[i] = strconv.FormatFloat(t, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

// ParseGrid reads "auto" (or empty), "all", or a comma-separated list
func ParseGrid(s string) (Grid, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "auto":
		return AutoGrid(), nil
	case "all":
		return AllGrid(), nil
	}
	var values []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Grid{}, core.NewError(core.ErrInvalidThreshold, "cannot parse %q", field)
		}
		values = append(values, v)
	}
	g := ExplicitGrid(values...)
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}
