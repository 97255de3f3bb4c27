package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/fincalc"
	md "github.com/nao1215/markdown"
)

// ValuationOptions holds configuration for rendering a valuation.
type ValuationOptions struct {
	Foreign string        // Currency the valuation is converted to.
	Style   fincalc.Style // Style of the amounts.
}

// ValuationMarkdown renders a valuation with the exchange rate it was
// converted with.
func ValuationMarkdown(r fincalc.ValuationResult, fx fincalc.FxRate, opts ValuationOptions) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Startup Valuation")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{
			md.Bold("Estimated Valuation"),
			md.Bold(fincalc.Format(r.Local, opts.Style)),
		},
		Rows: [][]string{
			{fmt.Sprintf("Valuation in %s", opts.Foreign), r.Foreign.Format(opts.Style)},
			{"Revenue Multiple", r.Multiple.StringFixed(1) + "x"},
			{"Exchange Rate", RateText(fx)},
		},
	})

	doc.H2("Profile")
	doc.PlainText(r.Narrative.Text())

	if ue := r.UnitEconomics; ue != nil {
		doc.H2("Unit Economics")
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"LTV/CAC", fmt.Sprintf("%.2fx", ue.Ratio)},
			Rows:      [][]string{},
		})
		doc.PlainText(ue.Verdict.Text())
	}

	return doc.String()
}

// RateText describes the exchange rate: "1 USD = 83.12 INR" once known,
// "Loading" or "Not available" otherwise.
func RateText(fx fincalc.FxRate) string {
	if fx.State != fincalc.Set {
		return fx.String()
	}
	return fmt.Sprintf("1 %s = %s %s", fx.Rate.Base, fx, fx.Rate.Quote)
}

// MessageMarkdown renders a titled message, used in place of a result the
// input did not allow to compute.
func MessageMarkdown(title, message string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)
	doc.PlainText(message)
	return doc.String()
}
