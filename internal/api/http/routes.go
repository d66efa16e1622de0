package httpapi

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bertrandstanley/Weather-Dashboard/internal/history"
	"github.com/bertrandstanley/Weather-Dashboard/internal/weather"
)

var validate = validator.New()

// WeatherQuerier answers weather queries.
type WeatherQuerier interface {
	QueryWeather(ctx context.Context, name string) (weather.Result, error)
}

// HistoryManager exposes the search history.
type HistoryManager interface {
	List(ctx context.Context) []history.Entry
	RemoveCity(ctx context.Context, id string) error
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service WeatherQuerier, hist HistoryManager) {
	api := app.Group("/api/weather")

	api.Post("/", func(c *fiber.Ctx) error {
		var req weatherRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		req.CityName = strings.TrimSpace(req.CityName)
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "City name is required")
		}

		result, err := service.QueryWeather(c.UserContext(), req.CityName)
		if err != nil {
			var te *weather.TransportError
			switch {
			case errors.Is(err, weather.ErrNotFound):
				return fiber.NewError(fiber.StatusNotFound, "city not found")
			case errors.Is(err, context.DeadlineExceeded):
				return fiber.NewError(fiber.StatusGatewayTimeout, "weather service timed out")
			case errors.As(err, &te):
				return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
			}
		}

		return c.JSON(result)
	})

	api.Get("/history", func(c *fiber.Ctx) error {
		return c.JSON(hist.List(c.UserContext()))
	})

	api.Delete("/history/:id", func(c *fiber.Ctx) error {
		if err := hist.RemoveCity(c.UserContext(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to delete city")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// ErrorHandler renders every handler error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		msg = e.Message
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": msg,
	})
}

// weatherRequest is the body of POST /api/weather.
type weatherRequest struct {
	CityName string `json:"cityName" form:"cityName" validate:"required,max=200"`
}
