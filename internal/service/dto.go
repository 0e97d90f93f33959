package service

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/costplan/backend/internal/model"
)

// RecordInput is the body of a record create request.
type RecordInput struct {
	Business             string            `json:"business" validate:"required"`
	Category             string            `json:"category" validate:"required,oneof=Resource Technology"`
	Functions            []string          `json:"functions" validate:"min=1,dive,required"`
	FunctionDescriptions map[string]string `json:"function_descriptions"`
	TechName             string            `json:"tech_name" validate:"required_if=Category Technology"`
	Location             string            `json:"location" validate:"required_if=Category Resource,omitempty,oneof=Onshore Offshore"`
	Count                int               `json:"count" validate:"gte=0"`
	TotalCost            model.Money       `json:"total_cost"`
	Comments             string            `json:"comments" validate:"max=2000"`
}

// build creates the record; Resource unit cost comes from the business rates.
func (in *RecordInput) build(rates model.Assumptions) (*model.Record, error) {
	names, err := cleanFunctions(in.Functions)
	if err != nil {
		return nil, err
	}
	fns := model.ZipFunctions(names, in.FunctionDescriptions)
	var rec *model.Record
	switch model.Category(in.Category) {
	case model.CategoryResource:
		loc := model.Location(in.Location)
		unit, err := rates.UnitCost(in.Business, loc)
		if err != nil {
			return nil, err
		}
		rec = model.NewResourceRecord(in.Business, fns, loc, in.Count, unit)
	default:
		if in.TotalCost.IsNegative() {
			return nil, fieldError("total_cost", "gte=0")
		}
		rec = model.NewTechnologyRecord(in.Business, fns, strings.TrimSpace(in.TechName), in.TotalCost)
	}
	rec.Comments = in.Comments
	return rec, nil
}

// RecordPatch updates selected fields of a record. Nil fields are left alone.
// The category of a record cannot change.
type RecordPatch struct {
	Functions            []string          `json:"functions" validate:"omitempty,min=1,dive,required"`
	FunctionDescriptions map[string]string `json:"function_descriptions"`
	TechName             *string           `json:"tech_name" validate:"omitempty,min=1"`
	Location             *string           `json:"location" validate:"omitempty,oneof=Onshore Offshore"`
	Count                *int              `json:"count" validate:"omitempty,gte=0"`
	TotalCost            *model.Money      `json:"total_cost"`
	Comments             *string           `json:"comments" validate:"omitempty,max=2000"`
}

func (p *RecordPatch) apply(rec *model.Record, rates model.Assumptions) error {
	if rec.Resource == nil && (p.Location != nil || p.Count != nil) {
		return invalid(fmt.Errorf("location and count apply to Resource records only"))
	}
	if rec.Technology == nil && (p.TechName != nil || p.TotalCost != nil) {
		return invalid(fmt.Errorf("tech_name and total_cost apply to Technology records only"))
	}

	if p.Functions != nil || p.FunctionDescriptions != nil {
		names := rec.FunctionNames()
		if p.Functions != nil {
			var err error
			if names, err = cleanFunctions(p.Functions); err != nil {
				return err
			}
		}
		descriptions := p.FunctionDescriptions
		if descriptions == nil {
			descriptions = make(map[string]string, len(rec.Functions))
			for _, f := range rec.Functions {
				descriptions[f.Name] = f.Description
			}
		}
		rec.Functions = model.ZipFunctions(names, descriptions)
	}
	if p.Comments != nil {
		rec.Comments = *p.Comments
	}

	if rec.Technology != nil {
		if p.TechName != nil {
			rec.Technology.Name = strings.TrimSpace(*p.TechName)
		}
		if p.TotalCost != nil {
			if p.TotalCost.IsNegative() {
				return fieldError("total_cost", "gte=0")
			}
			rec.TotalCost = *p.TotalCost
		}
		return nil
	}

	if p.Location != nil {
		loc := model.Location(*p.Location)
		unit, err := rates.UnitCost(rec.Business, loc)
		if err != nil {
			return err
		}
		rec.Resource.Location = loc
		rec.Resource.UnitCost = unit
	}
	if p.Count != nil {
		rec.Resource.Count = *p.Count
	}
	rec.Recalculate()
	return nil
}

// ChangeInput is the body of a change create request. Only the target value
// matching Type is read; the starting value is taken from the record.
type ChangeInput struct {
	RecordID    int          `json:"record_id" validate:"required,gt=0"`
	Type        string       `json:"type" validate:"required,oneof=count_change location_change cost_change"`
	ToCount     *int         `json:"to_count" validate:"required_if=Type count_change,omitempty,gte=0"`
	ToLocation  string       `json:"to_location" validate:"required_if=Type location_change,omitempty,oneof=Onshore Offshore"`
	ToCost      *model.Money `json:"to_cost"`
	Year        int          `json:"implementation_year"`
	Description string       `json:"description" validate:"max=2000"`
}

func (in *ChangeInput) build(rec *model.Record) (*model.Change, error) {
	var c *model.Change
	switch model.ChangeType(in.Type) {
	case model.CountChange:
		from := 0
		if rec.Resource != nil {
			from = rec.Resource.Count
		}
		c = model.NewCountChange(rec.ID, from, *in.ToCount, in.Year)
	case model.LocationChange:
		var from model.Location
		if rec.Resource != nil {
			from = rec.Resource.Location
		}
		c = model.NewLocationChange(rec.ID, from, model.Location(in.ToLocation), in.Year)
	case model.CostChange:
		if in.ToCost == nil {
			return nil, fieldError("to_cost", "required_if=Type cost_change")
		}
		c = model.NewCostChange(rec.ID, rec.TotalCost, *in.ToCost, in.Year)
	}
	c.Description = strings.TrimSpace(in.Description)
	return c, nil
}

// ImplementationInput sets the yearly values of one implementation type for a change.
type ImplementationInput struct {
	ChangeID    uuid.UUID     `json:"change_id" validate:"required"`
	Type        string        `json:"implementation_type" validate:"required"`
	Values      []model.Money `json:"values" validate:"max=5"`
	Salary      *model.Money  `json:"salary"`
	Description string        `json:"description" validate:"max=2000"`
}

func (in *ImplementationInput) values() (model.YearValues, error) {
	out := model.YearValuesOf()
	for i, v := range in.Values {
		if v.IsNegative() {
			return out, fieldError(fmt.Sprintf("values[%d]", i), "gte=0")
		}
		out[i] = v
	}
	return out, nil
}

// salary drops zero and negative overrides so the business rate applies.
func (in *ImplementationInput) salary() *model.Money {
	if in.Salary == nil || !in.Salary.IsPositive() {
		return nil
	}
	s := *in.Salary
	return &s
}

// cleanFunctions trims tags and drops repeats, keeping the first occurrence.
func cleanFunctions(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, fieldError("functions", "required")
		}
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return nil, fieldError("functions", "min=1")
	}
	return out, nil
}
