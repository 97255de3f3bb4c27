package agent

import (
	"context"
	"fmt"
	"strconv"

	"github.com/etnz/fincalc"
	"github.com/etnz/fincalc/docs"
	"github.com/etnz/fincalc/renderer"
	"google.golang.org/genai"
)

// creates the facilitator
func newFacilitator(model string, experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			The user is planning investments or sizing up a startup. Learn about the expert's skills
			from the Tools and ask them questions, they keep the context of your previous questions.

			Never compute a projection or a valuation yourself: ask the Analyst, who runs the
			calculators, and quote its figures. Explain the assumptions behind them in plain words.
			This is an educational tool, do not give investment advice.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// Tools are the calculators exposed to the models.
type Tools struct {
	Local   string // Currency of the amounts.
	Foreign string // Currency valuations are converted to.
	Cell    *fincalc.RateCell
}

// Functions returns the calculators as functions a model can call.
func (t *Tools) Functions() []Function {
	return []Function{t.projectFunc(), t.valueFunc(), t.rateFunc()}
}

// NewAnalyst returns the expert running the calculators.
func NewAnalyst(model string, t *Tools) *Expert {
	lib := t.Functions()
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. It runs the portfolio projector and the startup valuation
		scorer, and knows the live exchange rate. Ask the Analyst for any figure.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a financial analyst. Use the Tools to compute portfolio projections,
				startup valuations and currency conversions, and report their results faithfully.
				Amounts are in ` + t.Local + `, valuations are also converted to ` + t.Foreign + `.

				This is how the calculators work:

				` + must(docs.GetTopics("projection", "valuation"))}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, args map[string]any) (string, error)
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }

// Call runs the function. Errors are reported in the response with the
// message a user would read.
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	resp := &genai.FunctionResponse{ID: id, Name: f.Decl.Name}
	out, err := f.Func(ctx, args)
	if err != nil {
		resp.Response = map[string]any{"error": fincalc.UserMessage(err)}
		return resp
	}
	resp.Response = map[string]any{"output": out}
	return resp
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func numbers(description string, names ...string) map[string]*genai.Schema {
	props := make(map[string]*genai.Schema, len(names))
	for _, n := range names {
		props[n] = &genai.Schema{Type: genai.TypeNumber, Description: description}
	}
	return props
}

func (t *Tools) projectFunc() *Func {
	props := numbers("An amount in "+t.Local+".", "initial", "contribution")
	props["rate"] = &genai.Schema{Type: genai.TypeNumber, Description: "The annual growth rate in percent, 8 means 8%."}
	props["years"] = &genai.Schema{Type: genai.TypeInteger, Description: fmt.Sprintf("The horizon in years, from 1 to %d.", fincalc.MaxYears)}
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Project",
			Description: "Project computes the value of a portfolio growing at a fixed annual rate, with a contribution paid at the end of every year.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   []string{"initial", "rate", "years"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report with the final value, the total invested, the profit and the value at the end of every year.",
			},
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			years, ok := fincalc.NormalizeYears(arg(args, "years"))
			if !ok {
				return "", &fincalc.InvalidInputError{Field: "years", Reason: "must be a whole number"}
			}
			in := fincalc.ProjectionInput{
				Initial:      fincalc.NormalizeMoney(arg(args, "initial"), t.Local),
				Contribution: fincalc.NormalizeMoney(arg(args, "contribution"), t.Local),
				Rate:         fincalc.Percent(fincalc.Normalize(arg(args, "rate"))),
				Years:        years,
			}
			r, err := fincalc.Project(in)
			if err != nil {
				return "", err
			}
			return renderer.ProjectionMarkdown(in, r), nil
		},
	}
}

func (t *Tools) valueFunc() *Func {
	props := numbers("A percentage, 25 means 25%.", "growth", "margin")
	props["revenue"] = &genai.Schema{Type: genai.TypeNumber, Description: "The annual revenue in " + t.Local + "."}
	props["ltv"] = &genai.Schema{Type: genai.TypeNumber, Description: "Optional customer lifetime value."}
	props["cac"] = &genai.Schema{Type: genai.TypeNumber, Description: "Optional customer acquisition cost."}
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Value",
			Description: "Value estimates a startup at a multiple of its revenue from its growth and margin, and grades its LTV/CAC ratio when both are given.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   []string{"revenue", "growth", "margin"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report with the multiple, the valuation in both currencies and the reading of the profile.",
			},
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			fx := t.rate()
			r, err := fincalc.Score(fincalc.ValuationInput{
				Revenue: fincalc.NormalizeMoney(arg(args, "revenue"), t.Local),
				Growth:  fincalc.Percent(fincalc.Normalize(arg(args, "growth"))),
				Margin:  fincalc.Percent(fincalc.Normalize(arg(args, "margin"))),
				LTV:     fincalc.Normalize(arg(args, "ltv")),
				CAC:     fincalc.Normalize(arg(args, "cac")),
			}, fx, t.Foreign)
			if err != nil {
				return "", err
			}
			return renderer.ValuationMarkdown(r, fx, renderer.ValuationOptions{Foreign: t.Foreign}), nil
		},
	}
}

func (t *Tools) rateFunc() *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Rate",
			Description: "Rate returns the exchange rate used to convert valuations, or tells it is not available.",
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: `The rate as "1 USD = 83.12 INR", "Loading" or "Not available".`,
			},
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			return renderer.RateText(t.rate()), nil
		},
	}
}

func (t *Tools) rate() fincalc.FxRate {
	if t.Cell == nil {
		return fincalc.FxRate{State: fincalc.Failed}
	}
	return t.Cell.Get()
}

// arg reads a numeric argument as text, so that it goes through the same
// normalization as user input. Missing arguments read as "".
func arg(args map[string]any, name string) string {
	switch v := args[name].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Explain asks model for a commentary of a report.
func Explain(ctx context.Context, client *genai.Client, model, report string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are a financial analyst commenting a report produced by a calculator.
			Explain in a few short paragraphs what drives the figures and what would change them.
			Do not recompute the figures and do not give investment advice.

			This is how the calculator works:

			` + must(docs.GetTopics("projection", "valuation"))}}},
	}
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(report), config)
	if err != nil {
		return "", fmt.Errorf("could not generate the commentary: %w", err)
	}
	return resp.Text(), nil
}
