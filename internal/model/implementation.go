package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ImplementationType string

const (
	Rebadge        ImplementationType = "Rebadge"
	HouseResources ImplementationType = "House Resources"
	NewHire        ImplementationType = "New Hire"
	InternalBuild  ImplementationType = "Internal Build Costs"
)

var (
	resourceImplementationTypes   = []ImplementationType{Rebadge, HouseResources, NewHire}
	technologyImplementationTypes = []ImplementationType{InternalBuild}
)

// ImplementationTypes lists every type in display order.
func ImplementationTypes() []ImplementationType {
	return append(append([]ImplementationType(nil), resourceImplementationTypes...), technologyImplementationTypes...)
}

// ImplementationTypesFor lists the types that can be attached to a change on a record of cat.
func ImplementationTypesFor(cat Category) []ImplementationType {
	switch cat {
	case CategoryResource:
		return append([]ImplementationType(nil), resourceImplementationTypes...)
	case CategoryTechnology:
		return append([]ImplementationType(nil), technologyImplementationTypes...)
	}
	return nil
}

// ParseImplementationType maps a stored label to an ImplementationType.
func ParseImplementationType(s string) (ImplementationType, bool) {
	for _, t := range ImplementationTypes() {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// IsResource reports whether values of this type are headcounts priced by a rate.
// Technology types carry direct dollar amounts.
func (t ImplementationType) IsResource() bool {
	for _, rt := range resourceImplementationTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// ChangeRef identifies a change from the implementation side: owning business,
// record and the change's creation time.
type ChangeRef struct {
	Business string
	RecordID int
	ChangeAt time.Time
}

// Matches compares refs; times are compared with Equal so zone and monotonic data don't matter.
func (r ChangeRef) Matches(o ChangeRef) bool {
	return r.Business == o.Business && r.RecordID == o.RecordID && r.ChangeAt.Equal(o.ChangeAt)
}

// String is a display form only; lookups go through Matches.
func (r ChangeRef) String() string {
	return fmt.Sprintf("%s_%d_%s", r.Business, r.RecordID, r.ChangeAt.UTC().Format(time.RFC3339Nano))
}

// ImplementationKey identifies one implementation cost line: a change and a cost type.
type ImplementationKey struct {
	ChangeRef
	Type ImplementationType
}

func (k ImplementationKey) Matches(o ImplementationKey) bool {
	return k.Type == o.Type && k.ChangeRef.Matches(o.ChangeRef)
}

// YearValues holds one value per projected year 1..Horizon.
type YearValues [Horizon]Money

// Sum adds up all years.
func (v YearValues) Sum() Money {
	total := decimal.Zero
	for _, x := range v {
		total = total.Add(x)
	}
	return total
}

// Any reports whether some year is non-zero.
func (v YearValues) Any() bool {
	for _, x := range v {
		if !x.IsZero() {
			return true
		}
	}
	return false
}

// YearValuesOf builds YearValues from whole numbers; missing trailing years stay zero.
func YearValuesOf(vals ...int64) YearValues {
	var out YearValues
	for i := range out {
		out[i] = decimal.Zero
		if i < len(vals) {
			out[i] = decimal.NewFromInt(vals[i])
		}
	}
	return out
}

// ImplementationEntry is the cost of executing a change for one implementation type.
// For Resource types Values are headcounts; for Technology they are dollar amounts.
type ImplementationEntry struct {
	Key         ImplementationKey
	Values      YearValues
	Salary      *Money
	Description string
}

// SalaryOverride returns the per-unit rate set on the entry itself, when it is positive.
func (e *ImplementationEntry) SalaryOverride() (Money, bool) {
	if e.Salary == nil || !e.Salary.IsPositive() {
		return decimal.Zero, false
	}
	return *e.Salary, true
}

func (e *ImplementationEntry) Clone() *ImplementationEntry {
	cp := *e
	if e.Salary != nil {
		s := *e.Salary
		cp.Salary = &s
	}
	return &cp
}

type entryJSON struct {
	Business    string             `json:"business"`
	RecordID    int                `json:"record_id"`
	ChangeAt    time.Time          `json:"change_timestamp"`
	Type        ImplementationType `json:"implementation_type"`
	Values      []Money            `json:"values"`
	Salary      *Money             `json:"salary"`
	Description string             `json:"description"`
}

func (e *ImplementationEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		Business:    e.Key.Business,
		RecordID:    e.Key.RecordID,
		ChangeAt:    e.Key.ChangeAt,
		Type:        e.Key.Type,
		Values:      e.Values[:],
		Salary:      e.Salary,
		Description: e.Description,
	})
}

func (e *ImplementationEntry) UnmarshalJSON(data []byte) error {
	var w entryJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if _, ok := ParseImplementationType(string(w.Type)); !ok {
		return fmt.Errorf("unknown implementation type %q", w.Type)
	}
	*e = ImplementationEntry{
		Key: ImplementationKey{
			ChangeRef: ChangeRef{Business: w.Business, RecordID: w.RecordID, ChangeAt: w.ChangeAt},
			Type:      w.Type,
		},
		Salary:      w.Salary,
		Description: w.Description,
	}
	for i := range e.Values {
		e.Values[i] = decimal.Zero
		if i < len(w.Values) {
			e.Values[i] = w.Values[i]
		}
	}
	return nil
}
