package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// UnassignedFunction replaces function tags that are removed from the catalog.
const UnassignedFunction = "Unassigned"

// Business pairs the internal key used by records and rates with a user-facing name.
type Business struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
}

func DefaultBusinesses() []Business {
	return []Business{
		{Key: "Business A", DisplayName: "Business A"},
		{Key: "Business B", DisplayName: "Business B"},
	}
}

func DefaultFunctions() []string {
	return []string{"Development", "Testing", "Support", UnassignedFunction}
}

// Plan is the whole editable state of one workspace: records, proposed changes,
// implementation costs and the assumptions they are priced with.
type Plan struct {
	Records        []*Record              `json:"records"`
	Changes        []*Change              `json:"changes"`
	Implementation []*ImplementationEntry `json:"implementation"`
	Assumptions    Assumptions            `json:"assumptions"`
	Businesses     []Business             `json:"businesses"`
	Functions      []string               `json:"functions"`
}

// NewPlan returns an empty plan with the default businesses, rates and function catalog.
func NewPlan() *Plan {
	return &Plan{
		Assumptions: DefaultAssumptions(),
		Businesses:  DefaultBusinesses(),
		Functions:   DefaultFunctions(),
	}
}

// Clone returns a deep copy; stores hand clones to callers so edits stay local until committed.
func (p *Plan) Clone() *Plan {
	cp := &Plan{
		Records:        make([]*Record, 0, len(p.Records)),
		Changes:        make([]*Change, 0, len(p.Changes)),
		Implementation: make([]*ImplementationEntry, 0, len(p.Implementation)),
		Assumptions:    p.Assumptions.Clone(),
		Businesses:     slices.Clone(p.Businesses),
		Functions:      slices.Clone(p.Functions),
	}
	for _, r := range p.Records {
		cp.Records = append(cp.Records, r.Clone())
	}
	for _, c := range p.Changes {
		cp.Changes = append(cp.Changes, c.Clone())
	}
	for _, e := range p.Implementation {
		cp.Implementation = append(cp.Implementation, e.Clone())
	}
	return cp
}

func (p *Plan) Record(id int) (*Record, bool) {
	for _, r := range p.Records {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func (p *Plan) Change(id uuid.UUID) (*Change, bool) {
	for _, c := range p.Changes {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// RecordsFor filters by business and category; empty arguments match everything.
func (p *Plan) RecordsFor(business string, cat Category) []*Record {
	var out []*Record
	for _, r := range p.Records {
		if business != "" && r.Business != business {
			continue
		}
		if cat != "" && r.Category() != cat {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ChangesFor returns the changes of one record in application order.
func (p *Plan) ChangesFor(recordID int) []*Change {
	var out []*Change
	for _, c := range p.Changes {
		if c.RecordID == recordID {
			out = append(out, c)
		}
	}
	SortChanges(out)
	return out
}

// ChangesForBusiness returns changes whose record belongs to business. Orphans are skipped.
func (p *Plan) ChangesForBusiness(business string) []*Change {
	var out []*Change
	for _, c := range p.Changes {
		r, ok := p.Record(c.RecordID)
		if !ok {
			continue
		}
		if business == "" || r.Business == business {
			out = append(out, c)
		}
	}
	return out
}

// Orphans returns changes whose record no longer exists.
func (p *Plan) Orphans() []*Change {
	var out []*Change
	for _, c := range p.Changes {
		if _, ok := p.Record(c.RecordID); !ok {
			out = append(out, c)
		}
	}
	return out
}

// NextRecordID assigns ids sequentially after the highest one in use.
func (p *Plan) NextRecordID() int {
	next := 1
	for _, r := range p.Records {
		if r.ID >= next {
			next = r.ID + 1
		}
	}
	return next
}

// DeleteRecord removes a record together with its changes and implementation entries.
func (p *Plan) DeleteRecord(id int) error {
	idx := slices.IndexFunc(p.Records, func(r *Record) bool { return r.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrRecordNotFound, id)
	}
	business := p.Records[idx].Business
	p.Records = slices.Delete(p.Records, idx, idx+1)
	p.Changes = slices.DeleteFunc(p.Changes, func(c *Change) bool { return c.RecordID == id })
	p.Implementation = slices.DeleteFunc(p.Implementation, func(e *ImplementationEntry) bool {
		return e.Key.RecordID == id && e.Key.Business == business
	})
	return nil
}

// DeleteChange removes a change and the implementation entries attached to it.
func (p *Plan) DeleteChange(id uuid.UUID) error {
	idx := slices.IndexFunc(p.Changes, func(c *Change) bool { return c.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrChangeNotFound, id)
	}
	c := p.Changes[idx]
	p.Changes = slices.Delete(p.Changes, idx, idx+1)
	if r, ok := p.Record(c.RecordID); ok {
		ref := c.Ref(r.Business)
		p.Implementation = slices.DeleteFunc(p.Implementation, func(e *ImplementationEntry) bool {
			return e.Key.ChangeRef.Matches(ref)
		})
	}
	return nil
}

// ChangeByRef resolves the change an implementation entry points at.
func (p *Plan) ChangeByRef(ref ChangeRef) (*Change, *Record, bool) {
	r, ok := p.Record(ref.RecordID)
	if !ok || r.Business != ref.Business {
		return nil, nil, false
	}
	for _, c := range p.Changes {
		if c.RecordID == ref.RecordID && c.CreatedAt.Equal(ref.ChangeAt) {
			return c, r, true
		}
	}
	return nil, nil, false
}

// Entry looks up an implementation entry by key.
func (p *Plan) Entry(key ImplementationKey) (*ImplementationEntry, bool) {
	for _, e := range p.Implementation {
		if e.Key.Matches(key) {
			return e, true
		}
	}
	return nil, false
}

// SetEntry inserts or replaces the entry with the same key.
func (p *Plan) SetEntry(e *ImplementationEntry) {
	for i, cur := range p.Implementation {
		if cur.Key.Matches(e.Key) {
			p.Implementation[i] = e
			return
		}
	}
	p.Implementation = append(p.Implementation, e)
}

// EntriesFor returns the implementation entries of one business ("" for all).
func (p *Plan) EntriesFor(business string) []*ImplementationEntry {
	var out []*ImplementationEntry
	for _, e := range p.Implementation {
		if business == "" || e.Key.Business == business {
			out = append(out, e)
		}
	}
	return out
}

// ApplyRates stores new rates for business and reprices its Resource records.
// It returns the number of records repriced.
func (p *Plan) ApplyRates(business string, rates BusinessRates) int {
	if p.Assumptions == nil {
		p.Assumptions = Assumptions{}
	}
	p.Assumptions[business] = rates.Clone()
	n := 0
	for _, r := range p.Records {
		if r.Business != business || r.Resource == nil {
			continue
		}
		unit, ok := rates.Locations[r.Resource.Location]
		if !ok {
			continue
		}
		r.Resource.UnitCost = unit
		r.Recalculate()
		n++
	}
	return n
}

func (p *Plan) HasBusiness(key string) bool {
	return slices.ContainsFunc(p.Businesses, func(b Business) bool { return b.Key == key })
}

// DisplayName returns the user-facing name for an internal business key.
func (p *Plan) DisplayName(key string) string {
	for _, b := range p.Businesses {
		if b.Key == key {
			return b.DisplayName
		}
	}
	return key
}

// AddBusiness registers a business key; it is a no-op when the key exists.
func (p *Plan) AddBusiness(key, display string) {
	if p.HasBusiness(key) {
		return
	}
	if display == "" {
		display = key
	}
	p.Businesses = append(p.Businesses, Business{Key: key, DisplayName: display})
}

// RenameBusiness changes only the display name; records keep the internal key.
func (p *Plan) RenameBusiness(key, display string) error {
	display = strings.TrimSpace(display)
	if display == "" {
		return errors.New("display name is required")
	}
	for i := range p.Businesses {
		if p.Businesses[i].Key == key {
			p.Businesses[i].DisplayName = display
			return nil
		}
	}
	return fmt.Errorf("business %q: %w", key, ErrNotFound)
}

func (p *Plan) HasFunction(name string) bool {
	return slices.Contains(p.Functions, name)
}

func (p *Plan) AddFunction(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("function name is required")
	}
	if p.HasFunction(name) {
		return fmt.Errorf("function %q already exists", name)
	}
	p.Functions = append(p.Functions, name)
	return nil
}

// RenameFunction renames a catalog entry and every record tag using it.
func (p *Plan) RenameFunction(from, to string) error {
	to = strings.TrimSpace(to)
	switch {
	case from == UnassignedFunction:
		return fmt.Errorf("function %q cannot be renamed", UnassignedFunction)
	case to == "":
		return errors.New("function name is required")
	case !p.HasFunction(from):
		return fmt.Errorf("function %q: %w", from, ErrNotFound)
	case from == to:
		return nil
	case p.HasFunction(to):
		return fmt.Errorf("function %q already exists", to)
	}
	p.Functions[slices.Index(p.Functions, from)] = to
	for _, r := range p.Records {
		for i := range r.Functions {
			if r.Functions[i].Name == from {
				r.Functions[i].Name = to
			}
		}
	}
	return nil
}

// RemoveFunction drops a catalog entry. Records tagged with it are retagged
// Unassigned, keeping the description.
func (p *Plan) RemoveFunction(name string) error {
	if name == UnassignedFunction {
		return fmt.Errorf("function %q cannot be removed", UnassignedFunction)
	}
	if !p.HasFunction(name) {
		return fmt.Errorf("function %q: %w", name, ErrNotFound)
	}
	p.Functions = slices.DeleteFunc(p.Functions, func(f string) bool { return f == name })
	if !p.HasFunction(UnassignedFunction) {
		p.Functions = append(p.Functions, UnassignedFunction)
	}
	for _, r := range p.Records {
		if !r.HasFunction(name) {
			continue
		}
		out := make([]Function, 0, len(r.Functions))
		for _, f := range r.Functions {
			if f.Name == name {
				f.Name = UnassignedFunction
			}
			if idx := slices.IndexFunc(out, func(o Function) bool { return o.Name == f.Name }); idx >= 0 {
				if f.Description != "" {
					out[idx].Description = f.Description
				}
				continue
			}
			out = append(out, f)
		}
		r.Functions = out
	}
	return nil
}
