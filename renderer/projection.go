package renderer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/fincalc"
	md "github.com/nao1215/markdown"
)

// barWidth is the length of the bar of the largest value in the growth chart.
const barWidth = 30

// ProjectionMarkdown renders a projection: the summary then the value at the
// end of every year with a bar chart labelled in compact units.
func ProjectionMarkdown(in fincalc.ProjectionInput, r fincalc.ProjectionResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio Projection")
	doc.PlainText(md.Italic(fmt.Sprintf("%s invested, plus %s at the end of every year, growing %s a year for %d years.",
		in.Initial, in.Contribution, in.Rate, in.Years)))

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{
			md.Bold("Final Value"),
			md.Bold(r.Final.String()),
		},
		Rows: [][]string{
			{"Total Invested", r.Invested.String()},
			{"Profit", r.Profit.String()},
		},
	})

	doc.H2("Growth")
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Year", "Value", "Axis", "Chart"},
		Rows:   [][]string{},
	}
	peak := r.Final
	for _, p := range r.Series {
		if p.Value.GreaterThanOrEqual(peak) {
			peak = p.Value
		}
	}
	for _, p := range r.Series {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(p.Year),
			p.Value.String(),
			fincalc.Format(p.Value, fincalc.Compact),
			bar(p.Value, peak),
		})
	}
	doc.Table(table)

	return doc.String()
}

// bar draws v relative to peak.
func bar(v, peak fincalc.Money) string {
	if !peak.IsPositive() || !v.IsPositive() {
		return ""
	}
	n := int(v.AsFloat() / peak.AsFloat() * barWidth)
	if n < 1 {
		n = 1
	}
	return strings.Repeat("█", n)
}
