package model

import (
	"fmt"
	"maps"
)

// BusinessRates are the per-business default unit costs.
type BusinessRates struct {
	Locations      map[Location]Money           `json:"locations"`
	Implementation map[ImplementationType]Money `json:"implementation"`
}

func (b BusinessRates) Clone() BusinessRates {
	return BusinessRates{
		Locations:      maps.Clone(b.Locations),
		Implementation: maps.Clone(b.Implementation),
	}
}

// Assumptions maps an internal business key to its rates.
type Assumptions map[string]BusinessRates

// UnitCost is the annual cost of one resource of business at loc.
func (a Assumptions) UnitCost(business string, loc Location) (Money, error) {
	rates, ok := a[business]
	if !ok {
		return Money{}, fmt.Errorf("%w: business %q", ErrMissingRate, business)
	}
	v, ok := rates.Locations[loc]
	if !ok {
		return Money{}, fmt.Errorf("%w: %s %s", ErrMissingRate, business, loc)
	}
	return v, nil
}

// ImplementationRate is the default per-unit cost of an implementation type for business.
func (a Assumptions) ImplementationRate(business string, t ImplementationType) (Money, error) {
	rates, ok := a[business]
	if !ok {
		return Money{}, fmt.Errorf("%w: business %q", ErrMissingRate, business)
	}
	v, ok := rates.Implementation[t]
	if !ok {
		return Money{}, fmt.Errorf("%w: %s %s", ErrMissingRate, business, t)
	}
	return v, nil
}

func (a Assumptions) Clone() Assumptions {
	out := make(Assumptions, len(a))
	for k, v := range a {
		out[k] = v.Clone()
	}
	return out
}

// DefaultAssumptions returns the demonstration rates for the two built-in businesses.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		"Business A": {
			Locations: map[Location]Money{Onshore: Amount(100000), Offshore: Amount(40000)},
			Implementation: map[ImplementationType]Money{
				Rebadge:        Amount(15000),
				HouseResources: Amount(20000),
				NewHire:        Amount(25000),
			},
		},
		"Business B": {
			Locations: map[Location]Money{Onshore: Amount(90000), Offshore: Amount(35000)},
			Implementation: map[ImplementationType]Money{
				Rebadge:        Amount(12000),
				HouseResources: Amount(18000),
				NewHire:        Amount(22000),
			},
		},
	}
}
