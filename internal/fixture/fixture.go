// Package fixture serves a stand-in for the Ka board app: one page honoring
// the DOM contract the verification scenarios depend on, with client-side
// mounting delayed the way the real app's is.
package fixture

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed app.html
var appHTML string

// New returns the stand-in app server. The served page mounts its UI after a
// delay controlled by the ?delay= query parameter (milliseconds, default 150).
func New() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "ka-standin",
	})

	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html")
		return c.SendString(appHTML)
	})

	return app
}
