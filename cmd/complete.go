package cmd

import (
	"flag"

	"github.com/etnz/crowdfund/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors predicts the values of specific flags. Other flags accept
// something, or nothing for boolean flags.
var flagPredictors = map[string]complete.Predictor{
	"data-dir":   predict.Dirs("*"),
	"config":     predict.Files("*.toml"),
	"currency":   predict.Set{"USD", "EUR", "GBP", "JPY", "CHF"},
	"sort":       predict.Set{"newest", "deadline", "funding"},
	"status":     predict.Set{"success", "rejected"},
	"categories": predict.Something,
	"projects":   predict.Something,
	"rewards":    predict.Something,
}

// Completion returns the shell completion of the cfd command: global flags,
// subcommands and their flags.
func Completion(global *flag.FlagSet) *complete.Command {
	c := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: predictFlags(global),
	}
	for _, sub := range Commands() {
		f := flag.NewFlagSet(sub.Name(), flag.ContinueOnError)
		sub.SetFlags(f)
		c.Sub[sub.Name()] = &complete.Command{Flags: predictFlags(f)}
	}
	c.Sub["import"].Args = predict.Files("*.json")
	if topics, err := docs.AllTopics(); err == nil {
		c.Sub["topic"].Args = predict.Set(append(topics, docs.Index))
	}
	return c
}

func predictFlags(f *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		if p, ok := flagPredictors[fl.Name]; ok {
			flags[fl.Name] = p
			return
		}
		if b, ok := fl.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			flags[fl.Name] = predict.Nothing
			return
		}
		flags[fl.Name] = predict.Something
	})
	return flags
}
