package cmd

import (
	"flag"

	"github.com/etnz/fincalc/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line for shell completion.
func Completion() *complete.Command {
	c := &complete.Command{
		Sub: map[string]*complete.Command{},
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
			"v":      predict.Nothing,
		},
	}
	for _, e := range Commands {
		sub := &complete.Command{Flags: map[string]complete.Predictor{}}
		f := flag.NewFlagSet(e.Command.Name(), flag.ContinueOnError)
		e.Command.SetFlags(f)
		f.VisitAll(func(fl *flag.Flag) {
			sub.Flags[fl.Name] = predictFlag(fl)
		})
		c.Sub[e.Command.Name()] = sub
	}
	c.Sub["topic"].Args = predict.Set(topicNames())
	return c
}

func predictFlag(fl *flag.Flag) complete.Predictor {
	if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	return predict.Something
}

func topicNames() []string {
	names := []string{"readme", "*"}
	index, err := docs.Index()
	if err != nil {
		return names
	}
	for _, t := range index {
		names = append(names, t.Name)
	}
	return names
}
