package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/trenvio/trenvio/pkg/dataaggregator"
	"github.com/trenvio/trenvio/pkg/dataaggregator/query"
	"github.com/trenvio/trenvio/pkg/model"
)

func DatasourcesRouter(router fiber.Router) {
	router.Get("/", listDatasources)
	router.Get("/validity", getValidity)
}

// listDatasources reports the tiers in fallback order.
func listDatasources(c *fiber.Ctx) error {
	var names []string
	for _, source := range dataaggregator.GlobalAggregator.Sources {
		names = append(names, source.GetName())
	}

	return c.JSON(fiber.Map{
		"sources": names,
	})
}

func getValidity(c *fiber.Ctx) error {
	result, err := dataaggregator.Lookup[*model.ValiditySpan](c.UserContext(), dataaggregator.GlobalAggregator, query.Validity{})
	if err != nil {
		return lookupErrorResponse(c, err)
	}

	validity := result.Value
	now := time.Now()

	return c.JSON(fiber.Map{
		"valid_from":     validity.ValidFrom.Format("2006-01-02"),
		"valid_until":    validity.ValidUntil.Format("2006-01-02"),
		"export_date":    validity.ExportDate.Format("2006-01-02"),
		"is_current":     validity.IsCurrent(now),
		"days_remaining": validity.DaysRemaining(now),
		"data_source":    result.Source,
	})
}
