package api

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/trenvio/trenvio/pkg/api/routes"
	"github.com/trenvio/trenvio/pkg/cache"
	"github.com/trenvio/trenvio/pkg/database"
	"github.com/trenvio/trenvio/pkg/engine"
	"github.com/trenvio/trenvio/pkg/redis_client"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
				},
				Action: func(c *cli.Context) error {
					trainEngine, err := engine.Setup()
					if err != nil {
						return err
					}

					// redis and mongo are optional; the lookup engine
					// runs fully in-process without them
					if err := redis_client.Connect(); err != nil {
						log.Info().Err(err).Msg("Running without shared results cache")
					}
					if err := database.Connect(); err != nil {
						log.Info().Err(err).Msg("Running without passenger reports store")
					}

					routes.StationDirectory = trainEngine.Directory
					routes.ResultsCache = cache.SetupResults(cache.DefaultTTL)
					routes.SetupCaches()

					go trainEngine.Refresher.Run(context.Background())

					return SetupServer(c.String("listen"))
				},
			},
		},
	}
}
