package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is derived from which line of a Record is set.
type Category string

const (
	CategoryResource   Category = "Resource"
	CategoryTechnology Category = "Technology"
)

// ParseCategory maps a stored category label to a Category.
func ParseCategory(s string) (Category, bool) {
	switch Category(strings.TrimSpace(s)) {
	case CategoryResource:
		return CategoryResource, true
	case CategoryTechnology:
		return CategoryTechnology, true
	}
	return "", false
}

type Location string

const (
	Onshore  Location = "Onshore"
	Offshore Location = "Offshore"
)

// Locations lists the resource locations in display order.
func Locations() []Location {
	return []Location{Onshore, Offshore}
}

// ParseLocation maps a stored location label to a Location.
func ParseLocation(s string) (Location, bool) {
	switch Location(strings.TrimSpace(s)) {
	case Onshore:
		return Onshore, true
	case Offshore:
		return Offshore, true
	}
	return "", false
}

// Function is a role tag on a record, with an optional free-text description.
type Function struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ResourceLine holds the fields only staffing records carry.
type ResourceLine struct {
	Location Location
	Count    int
	UnitCost Money
}

// TechnologyLine holds the fields only technology records carry.
type TechnologyLine struct {
	Name string
}

// Record is a current cost line item. Exactly one of Resource and Technology is set.
type Record struct {
	ID        int
	Business  string
	Functions []Function
	TotalCost Money
	Comments  string
	CreatedAt time.Time

	Resource   *ResourceLine
	Technology *TechnologyLine
}

// NewResourceRecord builds a staffing record with TotalCost derived from count and unit cost.
func NewResourceRecord(business string, functions []Function, loc Location, count int, unitCost Money) *Record {
	r := &Record{
		Business:  business,
		Functions: functions,
		Resource:  &ResourceLine{Location: loc, Count: count, UnitCost: unitCost},
	}
	r.Recalculate()
	return r
}

// NewTechnologyRecord builds a technology record whose TotalCost is set directly.
func NewTechnologyRecord(business string, functions []Function, name string, total Money) *Record {
	return &Record{
		Business:   business,
		Functions:  functions,
		TotalCost:  total,
		Technology: &TechnologyLine{Name: name},
	}
}

// Category returns the variant of the record, or "" when neither variant is set.
func (r *Record) Category() Category {
	switch {
	case r.Resource != nil:
		return CategoryResource
	case r.Technology != nil:
		return CategoryTechnology
	}
	return ""
}

// Recalculate restores TotalCost == Count * UnitCost for Resource records.
func (r *Record) Recalculate() {
	if r.Resource == nil {
		return
	}
	r.TotalCost = r.Resource.UnitCost.Mul(decimal.NewFromInt(int64(r.Resource.Count)))
}

// Validate checks the structural invariants of the record.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Business) == "" {
		return errors.New("business is required")
	}
	if (r.Resource == nil) == (r.Technology == nil) {
		return errors.New("record must be exactly one of Resource or Technology")
	}
	if len(r.Functions) == 0 {
		return errors.New("at least one function is required")
	}
	if r.Resource != nil {
		if _, ok := ParseLocation(string(r.Resource.Location)); !ok {
			return fmt.Errorf("invalid location %q", r.Resource.Location)
		}
		if r.Resource.Count < 0 {
			return errors.New("count must not be negative")
		}
	}
	if r.TotalCost.IsNegative() {
		return errors.New("total cost must not be negative")
	}
	return nil
}

// FunctionNames returns the function tags in their stored order.
func (r *Record) FunctionNames() []string {
	names := make([]string, 0, len(r.Functions))
	for _, f := range r.Functions {
		names = append(names, f.Name)
	}
	return names
}

// HasFunction reports whether the record is tagged with name.
func (r *Record) HasFunction(name string) bool {
	for _, f := range r.Functions {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Label is the display name used in tables: "<functions> Team" or "<tech> (<functions>)".
func (r *Record) Label() string {
	fns := strings.Join(r.FunctionNames(), ", ")
	if r.Technology != nil {
		return fmt.Sprintf("%s (%s)", r.Technology.Name, fns)
	}
	return fns + " Team"
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	cp := *r
	cp.Functions = append([]Function(nil), r.Functions...)
	if r.Resource != nil {
		res := *r.Resource
		cp.Resource = &res
	}
	if r.Technology != nil {
		tech := *r.Technology
		cp.Technology = &tech
	}
	return &cp
}

// recordJSON is the flat wire shape shared by the API and the workbook.
type recordJSON struct {
	ID                   int               `json:"id"`
	Business             string            `json:"business"`
	Category             Category          `json:"category"`
	Functions            []string          `json:"functions"`
	FunctionDescriptions map[string]string `json:"function_descriptions"`
	TechName             *string           `json:"tech_name"`
	Location             *Location         `json:"location"`
	Count                *int              `json:"count"`
	UnitCost             *Money            `json:"unit_cost"`
	TotalCost            Money             `json:"total_cost"`
	Comments             string            `json:"comments"`
	CreatedAt            time.Time         `json:"timestamp"`
}

func (r *Record) MarshalJSON() ([]byte, error) {
	w := recordJSON{
		ID:                   r.ID,
		Business:             r.Business,
		Category:             r.Category(),
		Functions:            r.FunctionNames(),
		FunctionDescriptions: make(map[string]string, len(r.Functions)),
		TotalCost:            r.TotalCost,
		Comments:             r.Comments,
		CreatedAt:            r.CreatedAt,
	}
	for _, f := range r.Functions {
		w.FunctionDescriptions[f.Name] = f.Description
	}
	if r.Resource != nil {
		loc, count, unit := r.Resource.Location, r.Resource.Count, r.Resource.UnitCost
		w.Location, w.Count, w.UnitCost = &loc, &count, &unit
	}
	if r.Technology != nil {
		name := r.Technology.Name
		w.TechName = &name
	}
	return json.Marshal(w)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var w recordJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Record{
		ID:        w.ID,
		Business:  w.Business,
		Functions: ZipFunctions(w.Functions, w.FunctionDescriptions),
		TotalCost: w.TotalCost,
		Comments:  w.Comments,
		CreatedAt: w.CreatedAt,
	}
	switch w.Category {
	case CategoryResource:
		res := &ResourceLine{}
		if w.Location != nil {
			res.Location = *w.Location
		}
		if w.Count != nil {
			res.Count = *w.Count
		}
		if w.UnitCost != nil {
			res.UnitCost = *w.UnitCost
		}
		r.Resource = res
	case CategoryTechnology:
		tech := &TechnologyLine{}
		if w.TechName != nil {
			tech.Name = *w.TechName
		}
		r.Technology = tech
	default:
		return fmt.Errorf("unknown category %q", w.Category)
	}
	return nil
}

// ZipFunctions pairs function names with their descriptions, keeping name order.
func ZipFunctions(names []string, descriptions map[string]string) []Function {
	out := make([]Function, 0, len(names))
	for _, n := range names {
		out = append(out, Function{Name: n, Description: descriptions[n]})
	}
	return out
}
