package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/relevancy/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "relevancy-cli",
		Usage:   "Re-rank federated search results against a query",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "Config environment (config/<env>.yaml)",
				EnvVars: []string{"ENV"},
				Value:   "local",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Explicit config file path (overrides --env)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "rerank",
				Usage:  "Score result sets from a JSON file and print them annotated",
				Action: rerankCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "JSON file with an array of result sets (- for stdin)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query the results are scored against",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (default stdout)",
					},
					&cli.BoolFlag{
						Name:  "persist",
						Usage: "Store scored sets in the configured database",
					},
					&cli.BoolFlag{
						Name:  "no-explain",
						Usage: "Omit per-field match explanations",
					},
				},
			},
			{
				Name:   "batch",
				Usage:  "Score independent jobs concurrently",
				Action: batchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "jobs",
						Aliases:  []string{"j"},
						Usage:    "JSON file with an array of {id, query, result_sets} jobs (- for stdin)",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of concurrent workers (0 = number of CPUs)",
					},
					&cli.IntFlag{
						Name:  "max-jobs",
						Usage: "Maximum number of jobs accepted",
						Value: 1000,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (default stdout)",
					},
					&cli.BoolFlag{
						Name:  "no-explain",
						Usage: "Omit per-field match explanations",
					},
				},
			},
		},
	}
}
