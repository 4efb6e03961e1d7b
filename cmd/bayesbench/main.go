// Command bayesbench trains Gaussian Naive Bayes models on CSV datasets and
// serves their evaluation reports over HTTP.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	flagConfig       = "config"
	flagFile         = "file"
	flagName         = "name"
	flagNoHeader     = "no-header"
	flagLabelColumn  = "label-column"
	flagVarSmoothing = "var-smoothing"
	flagChart        = "chart"
	flagLogLevel     = "log-level"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "bayesbench",
		Usage:     "train and evaluate Gaussian Naive Bayes classifiers",
		Writer:    out,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "train the configured datasets and serve their reports",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagConfig,
						Aliases: []string{"c"},
						Usage:   "Load configuration from `FILE`",
						EnvVars: []string{"BAYESBENCH_CONFIG"},
					},
				},
				Action: serveAction,
			},
			{
				Name:      "evaluate",
				Usage:     "fit one CSV file and print its training-set report",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagFile,
						Aliases:  []string{"f"},
						Usage:    "CSV `FILE` to evaluate",
						Required: true,
					},
					&cli.StringFlag{
						Name:  flagName,
						Usage: "dataset name shown in the report (default: file name)",
					},
					&cli.BoolFlag{
						Name:  flagNoHeader,
						Usage: "the first row holds data, not column names",
					},
					&cli.IntFlag{
						Name:  flagLabelColumn,
						Value: -1,
						Usage: "index of the label column, negative counts from the end",
					},
					&cli.Float64Flag{
						Name:  flagVarSmoothing,
						Usage: "portion of the largest feature variance added to every variance",
					},
					&cli.StringFlag{
						Name:  flagChart,
						Usage: "write the per-class chart to `PNG`",
					},
					&cli.StringFlag{
						Name:  flagLogLevel,
						Value: "warn",
						Usage: "log level (debug, info, warn, error)",
					},
				},
				Action: evaluateAction,
			},
		},
	}
}
