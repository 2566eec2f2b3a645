package stations

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/trenvio/trenvio/pkg/model"
)

// Refresher periodically rebuilds the station directory from a loader.
// A failed load leaves the previous snapshot in place.
type Refresher struct {
	Directory *Directory
	Load      func(ctx context.Context) ([]model.Station, error)
	Interval  time.Duration
}

func (r *Refresher) Run(ctx context.Context) {
	interval := r.Interval
	if interval == 0 {
		interval = 6 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshOnce(ctx)
		}
	}
}

func (r *Refresher) refreshOnce(ctx context.Context) {
	retryBackoff := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)

	stationList, err := backoff.RetryWithData(func() ([]model.Station, error) {
		return r.Load(ctx)
	}, retryBackoff)

	if err != nil {
		log.Error().Err(err).Msg("Failed to refresh station directory, keeping previous snapshot")
		return
	}

	r.Directory.Replace(stationList)

	log.Info().Int("stations", len(stationList)).Msg("Refreshed station directory")
}
