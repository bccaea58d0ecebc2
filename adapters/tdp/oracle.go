// Package tdp implements the two closed-testing oracles that bound the true
// discovery proportion of arbitrary location subsets: the parametric
// Hommel/Simes oracle and the permutation-calibrated (lambda) oracle.
package tdp

import (
	"goari/domain/ari"
	"goari/domain/core"
	"goari/ports"
)

var (
	_ ports.TDPOracle = (*Parametric)(nil)
	_ ports.TDPOracle = (*Permutation)(nil)
)

// maskedPValues returns the p-values inside the mask after checking its shape
func maskedPValues(p ari.Map, mask ari.Mask) ([]float64, error) {
	if !mask.Shape.Equal(p.Shape) || len(mask.Bits) != len(p.Values) {
		return nil, core.NewError(core.ErrInvalidMask,
			"mask shape %v does not match map shape %v", []int(mask.Shape), []int(p.Shape))
	}
	var out []float64
	for i, in := range mask.Bits {
		if in {
			out = append(out, p.Values[i])
		}
	}
	if len(out) == 0 {
		return nil, core.NewError(core.ErrInvalidMask, "mask selects no locations")
	}
	return out, nil
}

// checkRange surfaces impossible proportions instead of clamping them
func checkRange(tdp float64) (float64, error) {
	if !(tdp >= 0 && tdp <= 1) {
		return 0, core.NewTDPRangeError(tdp)
	}
	return tdp, nil
}
