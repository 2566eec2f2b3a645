package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/trenvio/trenvio/pkg/reports"
)

func ReportsRouter(router fiber.Router) {
	router.Post("/", createReport)
	router.Get("/train/:number", getTrainReports)
	router.Get("/train/:number/summary", getTrainReportSummary)
}

func createReport(c *fiber.Ctx) error {
	var report reports.PassengerReport
	if err := c.BodyParser(&report); err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Body should be a JSON passenger report",
		})
	}

	if err := reports.Create(c.UserContext(), &report); err != nil {
		return reportsErrorResponse(c, err)
	}

	c.SendStatus(fiber.StatusCreated)
	return c.JSON(report)
}

func getTrainReports(c *fiber.Ctx) error {
	filed, err := reports.ForTrain(c.UserContext(), c.Params("number"), c.Query("service_day"))
	if err != nil {
		return reportsErrorResponse(c, err)
	}

	return c.JSON(filed)
}

func getTrainReportSummary(c *fiber.Ctx) error {
	summary, err := reports.Summarise(c.UserContext(), c.Params("number"), c.Query("service_day"))
	if err != nil {
		return reportsErrorResponse(c, err)
	}

	return c.JSON(summary)
}

func reportsErrorResponse(c *fiber.Ctx, err error) error {
	if errors.Is(err, reports.ErrDatabaseUnavailable) {
		c.SendStatus(fiber.StatusServiceUnavailable)
	} else {
		c.SendStatus(fiber.StatusBadRequest)
	}

	return c.JSON(fiber.Map{
		"error": err.Error(),
	})
}
