package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/trenvio/trenvio/pkg/dataaggregator"
	"github.com/trenvio/trenvio/pkg/dataaggregator/source/liveboard"
	"github.com/trenvio/trenvio/pkg/dataaggregator/source/schedule"
	"github.com/trenvio/trenvio/pkg/dataaggregator/source/ticketing"
	"github.com/trenvio/trenvio/pkg/model"
	"github.com/trenvio/trenvio/pkg/stations"
	"github.com/trenvio/trenvio/pkg/util"
)

const defaultDatasetPath = "data/trains.xml"
const defaultScrapeTimeout = 15 * time.Second

// Engine wires the source tiers, the station directory and its
// refresher together. One Engine per process.
type Engine struct {
	Dataset   *schedule.Dataset
	Directory *stations.Directory
	Refresher *stations.Refresher
}

// Setup loads the static dataset, builds the station directory and
// registers the source tiers on the global aggregator, freshest tier
// first.
func Setup() (*Engine, error) {
	env := util.GetEnvironmentVariables()

	datasetPath := env["TRENVIO_DATASET_PATH"]
	if datasetPath == "" {
		datasetPath = defaultDatasetPath
	}

	dataset, err := schedule.LoadFile(datasetPath)
	if err != nil {
		return nil, err
	}

	if !dataset.Validity.IsCurrent(time.Now()) {
		log.Warn().
			Time("validUntil", dataset.Validity.ValidUntil).
			Msg("Schedule dataset is outside its validity period")
	}

	directory := stations.NewDirectory()
	directory.Replace(dataset.Stations())

	timeout := defaultScrapeTimeout
	if seconds, err := strconv.Atoi(env["TRENVIO_SCRAPE_TIMEOUT"]); err == nil && seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}

	aggregator := &dataaggregator.Aggregator{}
	aggregator.RegisterSource(ticketing.NewSource(timeout))
	aggregator.RegisterSource(liveboard.NewSource(timeout))
	aggregator.RegisterSource(schedule.Source{Dataset: dataset})
	dataaggregator.GlobalAggregator = aggregator

	refresher := &stations.Refresher{
		Directory: directory,
		Load: func(ctx context.Context) ([]model.Station, error) {
			fresh, err := schedule.LoadFile(datasetPath)
			if err != nil {
				return nil, err
			}

			return fresh.Stations(), nil
		},
	}

	return &Engine{
		Dataset:   dataset,
		Directory: directory,
		Refresher: refresher,
	}, nil
}
