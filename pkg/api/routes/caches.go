package routes

import (
	"github.com/trenvio/trenvio/pkg/cache"
	"github.com/trenvio/trenvio/pkg/model"
)

// SetupCaches constructs the per-process snapshot caches. The server
// calls this once during startup; tests call it again for a clean
// slate.
func SetupCaches() {
	trainCache = cache.New[*model.TrainSnapshot](cache.DefaultCapacity, cache.DefaultTTL, loadTrain)
	boardCache = cache.New[*model.StationTimetable](cache.DefaultCapacity, cache.DefaultTTL, loadBoard)
}
