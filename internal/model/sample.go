package model

import "time"

type sampleRecord struct {
	business string
	funcs    []Function
	loc      Location
	count    int
	unit     int64
	tech     string
	total    int64
	comments string
}

var sampleRecords = []sampleRecord{
	{business: "Business A", funcs: []Function{{"Development", "Core development team for business applications"}}, loc: Onshore, count: 5, unit: 100000, comments: "Primary development team"},
	{business: "Business A", funcs: []Function{{"Testing", "QA and testing team for all applications"}}, loc: Offshore, count: 8, unit: 40000, comments: "Offshore testing team"},
	{business: "Business A", funcs: []Function{{"Support", "24/7 application support team"}}, loc: Offshore, count: 10, unit: 40000, comments: "Application support team"},
	{business: "Business A", funcs: []Function{{"Development", "Development environment and tools"}, {"Testing", "Testing and QA tools"}}, tech: "Development Suite", total: 750000, comments: "Development and testing tools suite"},
	{business: "Business A", funcs: []Function{{"Support", "Support ticketing and monitoring system"}}, tech: "Support System", total: 250000, comments: "Support and monitoring tools"},
	{business: "Business B", funcs: []Function{{"Development", "Core development team for business applications"}}, loc: Onshore, count: 4, unit: 90000, comments: "Primary development team"},
	{business: "Business B", funcs: []Function{{"Testing", "QA and testing team"}}, loc: Offshore, count: 6, unit: 35000, comments: "Testing team"},
	{business: "Business B", funcs: []Function{{"Support", "Application support team"}}, loc: Offshore, count: 8, unit: 35000, comments: "Support team"},
	{business: "Business B", funcs: []Function{{"Development", "Development tools and platforms"}, {"Testing", "Testing automation suite"}}, tech: "Development Platform", total: 500000, comments: "Development and testing platform"},
	{business: "Business B", funcs: []Function{{"Support", "Support and monitoring tools"}}, tech: "Support Tools", total: 200000, comments: "Support infrastructure"},
}

// SamplePlan returns the demonstration plan: ten records across two businesses,
// three changes and their implementation estimates.
func SamplePlan(now time.Time) *Plan {
	p := NewPlan()
	for i, s := range sampleRecords {
		var r *Record
		funcs := append([]Function(nil), s.funcs...)
		if s.tech != "" {
			r = NewTechnologyRecord(s.business, funcs, s.tech, Amount(s.total))
		} else {
			r = NewResourceRecord(s.business, funcs, s.loc, s.count, Amount(s.unit))
		}
		r.ID = i + 1
		r.Comments = s.comments
		r.CreatedAt = now
		p.Records = append(p.Records, r)
	}

	changes := []*Change{
		NewCountChange(1, 5, 3, 2),
		NewCostChange(4, Amount(750000), Amount(500000), 3),
		NewLocationChange(7, Offshore, Onshore, 2),
	}
	changes[0].Description = "Reduce development team through automation"
	changes[1].Description = "Move to cloud-based development tools"
	changes[2].Description = "Relocate testing team onshore"

	for i, c := range changes {
		// distinct timestamps keep the change refs unique
		c.CreatedAt = now.Add(time.Duration(i) * time.Second)
		p.Changes = append(p.Changes, c)

		r, _ := p.Record(c.RecordID)
		ref := c.Ref(r.Business)
		if r.Category() == CategoryResource {
			p.SetEntry(&ImplementationEntry{Key: ImplementationKey{ChangeRef: ref, Type: Rebadge}, Values: YearValuesOf(2, 1, 0, 0, 0)})
			p.SetEntry(&ImplementationEntry{Key: ImplementationKey{ChangeRef: ref, Type: HouseResources}, Values: YearValuesOf(1, 2, 1, 0, 0)})
			p.SetEntry(&ImplementationEntry{Key: ImplementationKey{ChangeRef: ref, Type: NewHire}, Values: YearValuesOf(1, 1, 1, 0, 0)})
			continue
		}
		p.SetEntry(&ImplementationEntry{Key: ImplementationKey{ChangeRef: ref, Type: InternalBuild}, Values: YearValuesOf(100000, 50000, 25000, 10000, 0)})
	}
	return p
}
