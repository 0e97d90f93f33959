package model

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ChangeType names which field of a record a change replaces.
type ChangeType string

const (
	CountChange    ChangeType = "count_change"
	LocationChange ChangeType = "location_change"
	CostChange     ChangeType = "cost_change"
)

// CountShift changes the number of units on a Resource record.
type CountShift struct {
	From int
	To   int
}

// LocationShift moves a Resource record; the new unit cost comes from the business rates.
type LocationShift struct {
	From Location
	To   Location
}

// CostShift sets a new total annual cost on a Technology record.
type CostShift struct {
	From Money
	To   Money
}

// Change is a proposed modification to one record, effective from Year onward.
// Exactly one of Count, Location and Cost is set.
type Change struct {
	ID          uuid.UUID
	RecordID    int
	Year        int
	Description string
	CreatedAt   time.Time

	Count    *CountShift
	Location *LocationShift
	Cost     *CostShift
}

// NewCountChange builds a headcount change with a fresh id.
func NewCountChange(recordID, from, to, year int) *Change {
	return &Change{ID: uuid.New(), RecordID: recordID, Year: year, Count: &CountShift{From: from, To: to}}
}

// NewLocationChange builds an onshore/offshore move with a fresh id.
func NewLocationChange(recordID int, from, to Location, year int) *Change {
	return &Change{ID: uuid.New(), RecordID: recordID, Year: year, Location: &LocationShift{From: from, To: to}}
}

// NewCostChange builds a total cost override with a fresh id.
func NewCostChange(recordID int, from, to Money, year int) *Change {
	return &Change{ID: uuid.New(), RecordID: recordID, Year: year, Cost: &CostShift{From: from, To: to}}
}

// Type returns the change variant, or "" when no payload is set.
func (c *Change) Type() ChangeType {
	switch {
	case c.Count != nil:
		return CountChange
	case c.Location != nil:
		return LocationChange
	case c.Cost != nil:
		return CostChange
	}
	return ""
}

// AppliesTo reports whether the change type is meaningful for a record category.
func (c *Change) AppliesTo(cat Category) bool {
	switch c.Type() {
	case CountChange, LocationChange:
		return cat == CategoryResource
	case CostChange:
		return cat == CategoryTechnology
	}
	return false
}

// Validate checks the payload and the implementation year.
func (c *Change) Validate() error {
	set := 0
	for _, ok := range []bool{c.Count != nil, c.Location != nil, c.Cost != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return errors.New("change must carry exactly one payload")
	}
	if !ValidImplementationYear(c.Year) {
		return fmt.Errorf("%w: %d", ErrInvalidYear, c.Year)
	}
	switch {
	case c.Count != nil && c.Count.To < 0:
		return errors.New("count must not be negative")
	case c.Location != nil:
		if _, ok := ParseLocation(string(c.Location.To)); !ok {
			return fmt.Errorf("invalid location %q", c.Location.To)
		}
	case c.Cost != nil && c.Cost.To.IsNegative():
		return errors.New("cost must not be negative")
	}
	return nil
}

// Ref is the composite identifier implementation entries use to point at this change.
func (c *Change) Ref(business string) ChangeRef {
	return ChangeRef{Business: business, RecordID: c.RecordID, ChangeAt: c.CreatedAt}
}

// Clone returns a deep copy.
func (c *Change) Clone() *Change {
	cp := *c
	if c.Count != nil {
		v := *c.Count
		cp.Count = &v
	}
	if c.Location != nil {
		v := *c.Location
		cp.Location = &v
	}
	if c.Cost != nil {
		v := *c.Cost
		cp.Cost = &v
	}
	return &cp
}

// CompareChanges orders by implementation year, then creation time.
func CompareChanges(a, b *Change) int {
	if n := cmp.Compare(a.Year, b.Year); n != 0 {
		return n
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}

// SortChanges sorts in place into application order.
func SortChanges(changes []*Change) {
	slices.SortStableFunc(changes, CompareChanges)
}

type changeJSON struct {
	ID          uuid.UUID       `json:"id"`
	RecordID    int             `json:"record_id"`
	Type        ChangeType      `json:"type"`
	From        json.RawMessage `json:"from"`
	To          json.RawMessage `json:"to"`
	Year        int             `json:"implementation_year"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"timestamp"`
}

func (c *Change) MarshalJSON() ([]byte, error) {
	var from, to any
	switch {
	case c.Count != nil:
		from, to = c.Count.From, c.Count.To
	case c.Location != nil:
		from, to = c.Location.From, c.Location.To
	case c.Cost != nil:
		from, to = c.Cost.From, c.Cost.To
	}
	fromRaw, err := json.Marshal(from)
	if err != nil {
		return nil, err
	}
	toRaw, err := json.Marshal(to)
	if err != nil {
		return nil, err
	}
	return json.Marshal(changeJSON{
		ID:          c.ID,
		RecordID:    c.RecordID,
		Type:        c.Type(),
		From:        fromRaw,
		To:          toRaw,
		Year:        c.Year,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	})
}

func (c *Change) UnmarshalJSON(data []byte) error {
	var w changeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Change{
		ID:          w.ID,
		RecordID:    w.RecordID,
		Year:        w.Year,
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
	}
	switch w.Type {
	case CountChange:
		c.Count = &CountShift{}
		return unmarshalPair(w.From, w.To, &c.Count.From, &c.Count.To)
	case LocationChange:
		c.Location = &LocationShift{}
		return unmarshalPair(w.From, w.To, &c.Location.From, &c.Location.To)
	case CostChange:
		c.Cost = &CostShift{}
		return unmarshalPair(w.From, w.To, &c.Cost.From, &c.Cost.To)
	}
	return fmt.Errorf("unknown change type %q", w.Type)
}

func unmarshalPair(fromRaw, toRaw json.RawMessage, from, to any) error {
	if len(fromRaw) > 0 && string(fromRaw) != "null" {
		if err := json.Unmarshal(fromRaw, from); err != nil {
			return fmt.Errorf("from: %w", err)
		}
	}
	if err := json.Unmarshal(toRaw, to); err != nil {
		return fmt.Errorf("to: %w", err)
	}
	return nil
}
