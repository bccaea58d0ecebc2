package ports

import "goari/domain/ari"

// TDPOracle answers simultaneous true-discovery-proportion queries. It is
// built once from the data and read-only thereafter, so a single oracle may
// be queried from many goroutines.
type TDPOracle interface {
	// TrueDiscoveryProportion returns a lower confidence bound on the fraction
	// of non-null locations inside the mask.
	TrueDiscoveryProportion(mask ari.Mask) (float64, error)

	// PValues returns the observed p-value map the oracle was built from
	PValues() ari.Map
}
