package main

import (
	"context"
	"errors"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-reportview/pkg/source"
)

// errAborted is returned when the user interrupts a prompt.
var errAborted = errors.New("reportview: prompt aborted")

// promptDriver abstracts the terminal so the interactive flow can be tested
// without one.
type promptDriver interface {
	Input(ctx context.Context, message, def string, validate func(string) error) (string, error)
	Select(ctx context.Context, message string, options []string, def string) (string, error)
}

type surveyDriver struct{}

func (surveyDriver) Input(ctx context.Context, message, def string, validate func(string) error) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{Message: message, Default: def}
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", translateSurveyErr(err)
	}
	return strings.TrimSpace(out), nil
}

func (surveyDriver) Select(ctx context.Context, message string, options []string, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Select{Message: message, Options: options}
	if def != "" {
		prompt.Default = def
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}

const (
	choiceStatGraph   = "Stat graph (statId + graphId)"
	choicePublicTable = "Public table snapshot (token)"
	choicePublicChart = "Public chart snapshot (token)"
)

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// promptIdentifier asks for a widget identifier, starting from the values
// already given on the command line.
func promptIdentifier(ctx context.Context, d promptDriver, seed source.Identifier) (source.Identifier, error) {
	def := choicePublicChart
	if flow, err := source.Select(seed); err == nil {
		switch flow {
		case source.FlowStatGraph:
			def = choiceStatGraph
		case source.FlowPublicTable:
			def = choicePublicTable
		}
	}

	choice, err := d.Select(ctx, "What do you want to render?",
		[]string{choiceStatGraph, choicePublicTable, choicePublicChart}, def)
	if err != nil {
		return source.Identifier{}, err
	}

	id := source.Identifier{Page: seed.Page}
	switch choice {
	case choiceStatGraph:
		if id.StatID, err = d.Input(ctx, "Stat id", seed.StatID, required("stat id")); err != nil {
			return source.Identifier{}, err
		}
		if id.GraphID, err = d.Input(ctx, "Graph id", seed.GraphID, required("graph id")); err != nil {
			return source.Identifier{}, err
		}
	default:
		if id.Token, err = d.Input(ctx, "Snapshot token", seed.Token, required("token")); err != nil {
			return source.Identifier{}, err
		}
		if choice == choicePublicTable {
			id.View = source.ViewTable
		}
	}
	return id, nil
}
