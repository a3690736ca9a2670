package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JaThHu/Notizen-App/internal/auth"
	"github.com/JaThHu/Notizen-App/internal/comments"
	"github.com/JaThHu/Notizen-App/internal/notes"
)

type Router struct {
	Auth     *auth.Handler
	Notes    *notes.Handler
	Comments *comments.Handler
	AuthMW   fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	app.Get("/health", health)
	app.Get("/healthz", health)

	app.Post("/api/register", r.Auth.Register)
	app.Post("/api/auth/login", r.Auth.Login)
	app.Get("/api/me", r.AuthMW, r.Auth.Me)

	app.Get("/api/notes", r.AuthMW, r.Notes.List)
	app.Post("/api/notes", r.AuthMW, r.Notes.Create)
	app.Get("/api/notes/:id", r.AuthMW, r.Notes.Get)
	app.Patch("/api/notes/:id", r.AuthMW, r.Notes.Update)
	app.Delete("/api/notes/:id", r.AuthMW, r.Notes.Delete)
	app.Patch("/api/notes/:id/like", r.AuthMW, r.Notes.ToggleLike)

	app.Post("/api/comments", r.AuthMW, r.Comments.Create)
	app.Delete("/api/comments/:id", r.AuthMW, r.Comments.Delete)
}

func health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}
