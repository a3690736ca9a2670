package router

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// NewApp builds the Fiber app with the shared error handler and the ambient
// middleware stack. Handlers raise *fiber.Error; everything else becomes a
// generic 500 so internal detail stays in the logs.
func NewApp(corsOrigin string) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(corsMiddleware(corsOrigin))
	app.Use(requestLogger())

	return app
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := uuid.NewString()
		c.Set("X-Request-Id", reqID)

		err := c.Next()

		status := c.Response().StatusCode()
		log.Printf("%s %s %d %s id=%s", c.Method(), c.Path(), status, time.Since(start), reqID)
		return err
	}
}
