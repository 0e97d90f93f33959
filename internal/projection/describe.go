package projection

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/costplan/backend/internal/model"
)

var printer = message.NewPrinter(language.English)

// Describe renders a change as a short multi-line explanation.
func Describe(c *model.Change, rec *model.Record) string {
	reason := c.Description
	if strings.TrimSpace(reason) == "" {
		reason = "No description provided"
	}
	functions := strings.Join(rec.FunctionNames(), ", ")

	var b strings.Builder
	switch {
	case c.Count != nil:
		printer.Fprintf(&b, "The number of %s resources will change from %d to %d in Year %d\n",
			functions, c.Count.From, c.Count.To, c.Year)
		verb := "Increase"
		if c.Count.To < c.Count.From {
			verb = "Reduction"
		}
		diff := c.Count.From - c.Count.To
		if diff < 0 {
			diff = -diff
		}
		printer.Fprintf(&b, "- Impact: %s of %d resources\n", verb, diff)
	case c.Location != nil:
		printer.Fprintf(&b, "%s team location will move from %s to %s in Year %d\n",
			functions, c.Location.From, c.Location.To, c.Year)
		b.WriteString("- Impact: Cost structure will change due to location shift\n")
	case c.Cost != nil:
		printer.Fprintf(&b, "Annual cost will change from %s to %s in Year %d\n",
			FormatMoney(c.Cost.From), FormatMoney(c.Cost.To), c.Year)
		diff := c.Cost.To.Sub(c.Cost.From)
		verb := "Increase"
		if diff.IsNegative() {
			verb = "Savings"
		}
		printer.Fprintf(&b, "- Impact: %s of %s per year\n", verb, FormatMoney(diff.Abs()))
	}
	b.WriteString("- Reason: " + reason)
	return b.String()
}

// FormatMoney formats an amount as dollars with thousands separators.
// Cents are shown only when present.
func FormatMoney(v model.Money) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Abs()
	}
	whole := v.Truncate(0)
	if v.Equal(whole) {
		return sign + printer.Sprintf("$%d", whole.IntPart())
	}
	cents := v.Sub(whole).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents == 100 {
		return sign + printer.Sprintf("$%d.00", whole.IntPart()+1)
	}
	return sign + printer.Sprintf("$%d", whole.IntPart()) + fmt.Sprintf(".%02d", cents)
}
