package comments

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JaThHu/Notizen-App/internal/auth"
)

type Handler struct {
	Store Store
	Notes NoteChecker
}

func NewHandler(store Store, notes NoteChecker) *Handler {
	return &Handler{Store: store, Notes: notes}
}

// Create adds a comment to an existing note. Any authenticated user may
// comment on any note.
func (h *Handler) Create(c *fiber.Ctx) error {
	ident, ok := auth.IdentityFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "user not authenticated")
	}

	var body CreateCommentRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	body.Text = strings.TrimSpace(body.Text)
	if body.Text == "" || body.NoteID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "text and noteId are required")
	}

	noteID, err := primitive.ObjectIDFromHex(body.NoteID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "note not found")
	}

	exists, err := h.Notes.Exists(c.UserContext(), noteID)
	if err != nil {
		log.Printf("create comment: check note: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not create comment")
	}
	if !exists {
		return fiber.NewError(fiber.StatusNotFound, "note not found")
	}

	comment, err := h.Store.Insert(c.UserContext(), noteID, ident.ID, body.Text)
	if err != nil {
		log.Printf("create comment: insert: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not create comment")
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// Delete removes a comment; only the author may do so.
func (h *Handler) Delete(c *fiber.Ctx) error {
	ident, ok := auth.IdentityFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "comment not found")
	}

	owner, err := h.Store.FindOwner(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "comment not found")
		}
		log.Printf("delete comment: find owner: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete comment")
	}
	if owner != ident.ID {
		return fiber.NewError(fiber.StatusForbidden, "not allowed to delete this comment")
	}

	if err := h.Store.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "comment not found")
		}
		log.Printf("delete comment: delete: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete comment")
	}

	return c.JSON(fiber.Map{"message": "comment deleted"})
}
