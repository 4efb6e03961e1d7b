package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/YuminosukeSato/bayesbench/datasets"
	"github.com/YuminosukeSato/bayesbench/internal/evaluation"
	"github.com/YuminosukeSato/bayesbench/pkg/errors"
	"github.com/YuminosukeSato/bayesbench/pkg/log"
	"github.com/YuminosukeSato/bayesbench/sklearn/naive_bayes"
)

func evaluateAction(c *cli.Context) error {
	if _, err := log.Setup(log.Config{
		Backend: log.BackendSlog,
		Level:   c.String(flagLogLevel),
		Format:  "console",
		Output:  c.App.ErrWriter,
	}); err != nil {
		return err
	}

	path := c.String(flagFile)
	name := c.String(flagName)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	opts := datasets.DefaultCSVOptions()
	opts.Header = !c.Bool(flagNoHeader)
	opts.LabelColumn = c.Int(flagLabelColumn)

	ds, err := datasets.LoadCSV(name, path, opts)
	if err != nil {
		return err
	}

	var modelOpts []naive_bayes.Option
	if eps := c.Float64(flagVarSmoothing); eps > 0 {
		modelOpts = append(modelOpts, naive_bayes.WithVarSmoothing(eps))
	}
	svc := evaluation.NewService(evaluation.WithModelOptions(modelOpts...))
	if err := svc.Train(context.Background(), ds); err != nil {
		return err
	}
	report, err := svc.Report(name)
	if err != nil {
		return err
	}

	out, err := renderReport(report)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, out)

	if chartPath := c.String(flagChart); chartPath != "" {
		f, err := os.Create(chartPath)
		if err != nil {
			return errors.Wrap(err, "create chart file")
		}
		defer f.Close()
		if err := evaluation.RenderChart(report, f); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "chart written to %s\n", chartPath)
	}
	return nil
}

// renderReport prints the confusion matrix with per-class recall, rows are
// actual classes and columns predicted ones.
func renderReport(r *evaluation.Report) (string, error) {
	recall, err := r.Recall()
	if err != nil {
		return "", err
	}

	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s: %d examples, %d attributes, %d classes",
		r.Dataset, r.NumberOfExamples, r.NumberOfAttributes, r.NumberOfClasses))

	header := table.Row{"Actual \\ Predicted"}
	for _, row := range r.ConfusionMatrix {
		header = append(header, row.ClassName)
	}
	header = append(header, "Recall")
	t.AppendHeader(header)

	for i, row := range r.ConfusionMatrix {
		cells := table.Row{row.ClassName}
		for _, n := range row.Row {
			cells = append(cells, n)
		}
		cells = append(cells, evaluation.FormatPercent(recall[i]))
		t.AppendRow(cells)
	}

	footer := table.Row{"Accuracy"}
	for range r.ConfusionMatrix {
		footer = append(footer, "")
	}
	footer[len(footer)-1] = r.CorrectlyClassified
	footer = append(footer, r.Accuracy)
	t.AppendFooter(footer)

	return t.Render(), nil
}
