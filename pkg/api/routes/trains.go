package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"

	"github.com/trenvio/trenvio/pkg/cache"
	"github.com/trenvio/trenvio/pkg/dataaggregator"
	"github.com/trenvio/trenvio/pkg/dataaggregator/query"
	"github.com/trenvio/trenvio/pkg/model"
	"github.com/trenvio/trenvio/pkg/util"
)

// ResultsCache is the optional redis-backed cache for reduced JSON
// payloads, shared across instances. Nil-safe.
var ResultsCache *cache.Results

var trainCache *cache.Cache[*model.TrainSnapshot]

func TrainsRouter(router fiber.Router) {
	router.Get("/suggestions", getTrainSuggestions)
	router.Get("/:number", getTrain)
}

// trainKey encodes everything the loader needs to rebuild the query.
func trainKey(number string, date *time.Time, commercialOnly bool) string {
	dateValue := ""
	if date != nil {
		dateValue = date.Format(time.RFC3339)
	}

	return fmt.Sprintf("%s|%s|%t", model.CleanTrainNumber(number), dateValue, commercialOnly)
}

func loadTrain(ctx context.Context, key string) (*model.TrainSnapshot, error) {
	parts := strings.SplitN(key, "|", 3)

	trainQuery := query.Train{Number: parts[0]}
	if parts[1] != "" {
		if date, err := time.Parse(time.RFC3339, parts[1]); err == nil {
			trainQuery.Date = &date
		}
	}
	trainQuery.CommercialOnly = parts[2] == "true"

	result, err := dataaggregator.Lookup[*model.TrainSnapshot](ctx, dataaggregator.GlobalAggregator, trainQuery)
	if err != nil {
		return nil, err
	}

	return result.Value, nil
}

func getTrain(c *fiber.Ctx) error {
	number := c.Params("number")

	date, err := dateParam(c)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	commercialOnly := c.QueryBool("commercial_only", false)
	detailed := c.QueryBool("detailed", false)

	key := trainKey(number, date, commercialOnly)
	resultsKey := fmt.Sprintf("train/%s/detailed=%t", key, detailed)

	if payload, ok := ResultsCache.Get(c.UserContext(), resultsKey); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(payload)
	}

	snapshot, err := trainCache.Get(c.UserContext(), key)
	if err != nil {
		return lookupErrorResponse(c, err)
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: marshalGroups(detailed),
	}, snapshot)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce TrainSnapshot",
		})
	}

	if payload, err := json.Marshal(reduced); err == nil {
		ResultsCache.Set(c.UserContext(), resultsKey, string(payload))
	}

	return c.JSON(reduced)
}

func getTrainSuggestions(c *fiber.Ctx) error {
	queryText := c.Query("q")
	if queryText == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter q is required",
		})
	}

	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter limit should be an integer",
		})
	}

	date, err := dateParam(c)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result, err := dataaggregator.Lookup[[]model.TrainSuggestion](c.UserContext(), dataaggregator.GlobalAggregator, query.TrainSuggestions{
		Query: queryText,
		Date:  date,
		Limit: limit,
	})
	if err != nil {
		return lookupErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"suggestions": result.Value,
		"data_source": result.Source,
	})
}

// dateParam parses the optional date query parameter in the upstream
// timezone, so pinned times and the requested day share a frame.
func dateParam(c *fiber.Ctx) (*time.Time, error) {
	value := c.Query("date")
	if value == "" {
		return nil, nil
	}

	date, err := util.ParseDate(value, model.Timezone())
	if err != nil {
		return nil, err
	}

	return &date, nil
}

func marshalGroups(detailed bool) []string {
	if detailed {
		return []string{"basic", "detailed"}
	}

	return []string{"basic"}
}

func lookupErrorResponse(c *fiber.Ctx, err error) error {
	var dateErr *dataaggregator.DateOutOfRangeError
	if errors.As(err, &dateErr) {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error":       err.Error(),
			"valid_from":  dateErr.Span.ValidFrom.Format("2006-01-02"),
			"valid_until": dateErr.Span.ValidUntil.Format("2006-01-02"),
		})
	}

	var notFound *dataaggregator.NotFoundError
	if errors.As(err, &notFound) {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error":       err.Error(),
			"suggestions": notFound.Suggestions,
			"attempts":    notFound.Attempts,
		})
	}

	c.SendStatus(fiber.StatusBadGateway)
	return c.JSON(fiber.Map{
		"error": err.Error(),
	})
}
