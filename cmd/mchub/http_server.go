package main

import (
	"embed"
	"net/http"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kdudkov/mchub/internal/command"
	"github.com/kdudkov/mchub/internal/wshandler"
	"github.com/kdudkov/mchub/pkg/log"
)

//go:embed templates
var templates embed.FS

type CommandRequest struct {
	Command string `json:"command"`
}

func NewHttp(app *App) *fiber.App {
	engine := html.NewFileSystem(http.FS(templates), ".html")

	engine.Delims("[[", "]]")

	srv := fiber.New(fiber.Config{EnablePrintRoutes: false, DisableStartupMessage: true, Views: engine})

	srv.Use(log.NewFiberLogger(app.logger))

	srv.Get("/", getIndexHandler(app))
	srv.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	srv.Get("/api/status", getStatusHandler(app))
	srv.Get("/api/events", getEventsHandler(app))
	srv.Post("/api/command", postCommandHandler(app))

	srv.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}

		return fiber.ErrUpgradeRequired
	})

	srv.Get("/ws", getWsHandler(app))

	return srv
}

func getIndexHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		data := fiber.Map{
			"version": getVersion(),
			"event":   app.bus.Name(),
		}

		return ctx.Render("templates/index", data)
	}
}

func getStatusHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		m := make(map[string]any)
		m["version"] = getVersion()
		m["event"] = app.bus.Name()
		m["subscribers"] = app.bus.Subscribers()
		m["uptime"] = time.Since(app.started).Truncate(time.Second).String()

		if a := app.telemetry.Addr(); a != nil {
			m["telemetry_addr"] = a.String()
		}

		if a := app.command.Addr(); a != nil {
			m["command_addr"] = a.String()
		}

		return ctx.JSON(m)
	}
}

func getEventsHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.JSON(app.bus.History())
	}
}

func postCommandHandler(app *App) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		req := new(CommandRequest)

		if err := ctx.BodyParser(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return ctx.JSON(fiber.Map{"result": command.Submit(app.logger, req.Command)})
	}
}

func getWsHandler(app *App) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		name := uuid.NewString()

		h := wshandler.NewHandler(app.logger, name, c)

		app.bus.Subscribe(name, h.SendMessage)
		h.Listen()
		app.bus.Unsubscribe(name)
	})
}
