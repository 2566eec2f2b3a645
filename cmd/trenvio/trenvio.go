package main

import (
	"context"
	"os"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/trenvio/trenvio/pkg/api"
	"github.com/trenvio/trenvio/pkg/dataaggregator"
	"github.com/trenvio/trenvio/pkg/dataaggregator/query"
	"github.com/trenvio/trenvio/pkg/engine"
	"github.com/trenvio/trenvio/pkg/model"
	"github.com/trenvio/trenvio/pkg/util"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("TRENVIO_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("TRENVIO_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "trenvio",
		Description: "Train timetable resolution and delay reconciliation engine",

		Commands: []*cli.Command{
			api.RegisterCLI(),
			lookupCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

// lookupCLI runs one aggregator lookup from the terminal, for poking
// at the fallback chain without a server.
func lookupCLI() *cli.Command {
	return &cli.Command{
		Name:  "lookup",
		Usage: "Resolve a single train or station board and dump the result",
		Subcommands: []*cli.Command{
			{
				Name:      "train",
				Usage:     "resolve one train snapshot",
				ArgsUsage: "<train number>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "service day, YYYY-MM-DD",
					},
				},
				Action: func(c *cli.Context) error {
					if _, err := engine.Setup(); err != nil {
						return err
					}

					trainQuery := query.Train{Number: c.Args().First()}
					if c.String("date") != "" {
						date, err := util.ParseDate(c.String("date"), model.Timezone())
						if err != nil {
							return err
						}
						trainQuery.Date = &date
					}

					ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
					defer cancel()

					result, err := dataaggregator.Lookup[*model.TrainSnapshot](ctx, dataaggregator.GlobalAggregator, trainQuery)
					if err != nil {
						return err
					}

					pretty.Println(result.Source, result.Attempts)
					pretty.Println(result.Value)

					return nil
				},
			},
			{
				Name:      "station",
				Usage:     "resolve one station board",
				ArgsUsage: "<station name>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "live",
						Value: true,
						Usage: "use the live board rather than the static schedule",
					},
				},
				Action: func(c *cli.Context) error {
					trainEngine, err := engine.Setup()
					if err != nil {
						return err
					}

					station := trainEngine.Directory.Resolve(c.Args().First())

					ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
					defer cancel()

					result, err := dataaggregator.Lookup[*model.StationTimetable](ctx, dataaggregator.GlobalAggregator, query.StationBoard{
						Station: station,
						Live:    c.Bool("live"),
					})
					if err != nil {
						return err
					}

					pretty.Println(result.Source, result.Attempts)
					pretty.Println(result.Value)

					return nil
				},
			},
		},
	}
}
