package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/trenvio/trenvio/pkg/api/routes"
)

func SetupServer(listen string) error {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)

	routes.TrainsRouter(group.Group("/trains"))
	routes.StationsRouter(group.Group("/stations"))
	routes.ReportsRouter(group.Group("/reports"))
	routes.DatasourcesRouter(group.Group("/datasources"))

	return webApp.Listen(listen)
}
