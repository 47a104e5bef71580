package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mounirchebbi/beach-safety-app/internal/alerts"
	"github.com/mounirchebbi/beach-safety-app/internal/domain"
	"github.com/mounirchebbi/beach-safety-app/internal/service"
)

// Register mounts every route on the app.
func Register(app *fiber.App, svcs *service.Services) {
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(svcs.Registry, promhttp.HandlerOpts{})))

	RegisterWS(app, svcs.Hub)

	v1 := app.Group("/api/v1")

	// Public intake: anyone in distress can raise an SOS.
	v1.Post("/alerts/sos", func(c *fiber.Ctx) error {
		var req alerts.SOSRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, domain.Validationf("malformed body: %v", err))
		}
		alert, err := svcs.Alerts.CreateSOS(c.Context(), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(alert)
	})

	auth := v1.Group("/", principalMiddleware)

	auth.Get("/alerts/:id", func(c *fiber.Ctx) error {
		alert, err := svcs.Repos.AlertByID(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(alert)
	})

	auth.Get("/centers/:id/alerts", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		status := domain.AlertStatus(c.Query("status"))
		if status != "" && !status.Valid() {
			return fail(c, domain.Validationf("invalid alert status %q", status))
		}
		items, err := svcs.Repos.AlertsByCenter(c.Context(), c.Params("id"), status, limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})

	auth.Put("/alerts/:id/status", func(c *fiber.Ctx) error {
		var body struct {
			Status domain.AlertStatus `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fail(c, domain.Validationf("malformed body: %v", err))
		}
		alert, err := svcs.Alerts.UpdateAlertStatus(c.Context(), c.Params("id"), body.Status)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(alert)
	})

	auth.Post("/alerts/:id/assign", func(c *fiber.Ctx) error {
		var body struct {
			LifeguardID string `json:"lifeguard_id"`
		}
		if err := c.BodyParser(&body); err != nil || body.LifeguardID == "" {
			return fail(c, domain.Validationf("lifeguard_id is required"))
		}
		alert, err := svcs.Alerts.AssignAlert(c.Context(), c.Params("id"), body.LifeguardID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(alert)
	})

	auth.Post("/escalations", func(c *fiber.Ctx) error {
		var req alerts.EscalationRequest
		if err := c.BodyParser(&req); err != nil {
			return fail(c, domain.Validationf("malformed body: %v", err))
		}
		esc, err := svcs.Alerts.CreateEscalation(c.Context(), principal(c), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(esc)
	})

	auth.Get("/escalations/:id", func(c *fiber.Ctx) error {
		esc, err := svcs.Repos.EscalationByID(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(esc)
	})

	auth.Put("/escalations/:id/acknowledge", func(c *fiber.Ctx) error {
		esc, err := svcs.Alerts.AcknowledgeEscalation(c.Context(), principal(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(esc)
	})

	auth.Put("/escalations/:id/resolve", func(c *fiber.Ctx) error {
		esc, err := svcs.Alerts.ResolveEscalation(c.Context(), principal(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(esc)
	})

	auth.Post("/inter-center-support", func(c *fiber.Ctx) error {
		var req alerts.SupportRequestInput
		if err := c.BodyParser(&req); err != nil {
			return fail(c, domain.Validationf("malformed body: %v", err))
		}
		sr, err := svcs.Alerts.CreateSupportRequest(c.Context(), principal(c), req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sr)
	})

	auth.Get("/inter-center-support/:id", func(c *fiber.Ctx) error {
		sr, err := svcs.Repos.SupportRequestByID(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(sr)
	})

	auth.Put("/inter-center-support/:id/acknowledge", func(c *fiber.Ctx) error {
		sr, err := svcs.Alerts.AcknowledgeSupportRequest(c.Context(), principal(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(sr)
	})

	auth.Put("/inter-center-support/:id/resolve", func(c *fiber.Ctx) error {
		sr, err := svcs.Alerts.ResolveSupportRequest(c.Context(), principal(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(sr)
	})

	auth.Put("/inter-center-support/:id/decline", func(c *fiber.Ctx) error {
		var body struct {
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fail(c, domain.Validationf("malformed body: %v", err))
		}
		sr, err := svcs.Alerts.DeclineSupportRequest(c.Context(), principal(c), c.Params("id"), body.Reason)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(sr)
	})

	auth.Get("/safety/centers/:id/current", func(c *fiber.Ctx) error {
		flag, err := svcs.Repos.EffectiveFlag(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(flag)
	})

	auth.Get("/safety/centers/:id/history", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		items, err := svcs.Repos.FlagHistory(c.Context(), c.Params("id"), limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})

	auth.Get("/safety/centers/:id/mode", func(c *fiber.Ctx) error {
		mode, err := svcs.Engine.Mode(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(mode)
	})

	auth.Post("/safety/centers/:id/manual", requireRole(domain.RoleCenterAdmin, domain.RoleSystemAdmin), func(c *fiber.Ctx) error {
		var body struct {
			Status    domain.FlagStatus `json:"flag_status"`
			Reason    string            `json:"reason"`
			ExpiresAt *time.Time        `json:"expires_at"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fail(c, domain.Validationf("malformed body: %v", err))
		}
		flag, err := svcs.Engine.ManualOverride(c.Context(), c.Params("id"), body.Status, body.Reason, body.ExpiresAt, principal(c))
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(flag)
	})

	auth.Post("/safety/centers/:id/auto-update", requireRole(domain.RoleCenterAdmin, domain.RoleSystemAdmin), func(c *fiber.Ctx) error {
		res, err := svcs.Engine.AutoUpdate(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(res)
	})

	auth.Get("/weather/centers/:id/current", func(c *fiber.Ctx) error {
		reading, err := svcs.Repos.LatestReading(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(reading)
	})

	auth.Get("/weather/centers/:id/forecast", func(c *fiber.Ctx) error {
		center, err := svcs.Repos.CenterByID(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		days, err := svcs.Weather.UpdateForecast(c.Context(), *center)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(days)
	})

	auth.Get("/weather/centers/:id/history", func(c *fiber.Ctx) error {
		days, _ := strconv.Atoi(c.Query("days", "7"))
		items, err := svcs.Weather.History(c.Context(), c.Params("id"), days)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})

	auth.Post("/broadcast", requireRole(domain.RoleCenterAdmin, domain.RoleSystemAdmin), func(c *fiber.Ctx) error {
		var body struct {
			CenterID string          `json:"center_id"`
			Message  string          `json:"message"`
			Severity domain.Priority `json:"severity"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fail(c, domain.Validationf("malformed body: %v", err))
		}
		if err := svcs.Alerts.Broadcast(c.Context(), principal(c), body.CenterID, body.Message, body.Severity); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"status": "sent"})
	})
}

// fail maps an error to its HTTP status by kind.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, domain.ErrUpstream):
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
