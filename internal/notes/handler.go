package notes

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JaThHu/Notizen-App/internal/auth"
	"github.com/JaThHu/Notizen-App/internal/comments"
)

type Handler struct {
	Store    Store
	Comments comments.Store
}

func NewHandler(store Store, commentStore comments.Store) *Handler {
	return &Handler{Store: store, Comments: commentStore}
}

type noteWithComments struct {
	Note     Note               `json:"note"`
	Comments []comments.Comment `json:"comments"`
}

// List returns all notes, newest first.
func (h *Handler) List(c *fiber.Ctx) error {
	if _, ok := auth.IdentityFromCtx(c); !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "user not authenticated")
	}

	notes, err := h.Store.List(c.UserContext())
	if err != nil {
		log.Printf("list notes: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not list notes")
	}
	return c.JSON(notes)
}

func (h *Handler) Create(c *fiber.Ctx) error {
	ident, ok := auth.IdentityFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "user not authenticated")
	}

	var body CreateNoteRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	body.Title = strings.TrimSpace(body.Title)
	if body.Title == "" || body.Content == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title and content are required")
	}

	note, err := h.Store.Insert(c.UserContext(), ident.ID, body.Title, body.Content)
	if err != nil {
		log.Printf("create note: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not create note")
	}

	return c.Status(fiber.StatusCreated).JSON(note)
}

// Get returns one note together with its comments, newest comment first.
func (h *Handler) Get(c *fiber.Ctx) error {
	if _, ok := auth.IdentityFromCtx(c); !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "note not found")
	}

	note, err := h.Store.FindByID(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "note not found")
		}
		log.Printf("get note: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not load note")
	}

	noteComments, err := h.Comments.ListByNote(c.UserContext(), id)
	if err != nil {
		log.Printf("get note: list comments: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not load note")
	}

	return c.JSON(noteWithComments{Note: note, Comments: noteComments})
}

// Update applies a presence-aware patch. Title and content require the
// caller to be the author; completed may be flipped by any authenticated
// user, matching the app's shared-todo behavior.
func (h *Handler) Update(c *fiber.Ctx) error {
	ident, ok := auth.IdentityFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "note not found")
	}

	var patch UpdateNoteRequest
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	ref, err := h.Store.FindRef(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "note not found")
		}
		log.Printf("update note: find: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not update note")
	}

	if (patch.Title != nil || patch.Content != nil) && ref.Author != ident.ID {
		return fiber.NewError(fiber.StatusForbidden, "not allowed to edit this note")
	}

	note, err := h.Store.Update(c.UserContext(), id, patch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "note not found")
		}
		log.Printf("update note: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not update note")
	}

	return c.JSON(note)
}

// Delete removes a note and all of its comments. Only the author may delete.
// The cascade is best effort: if the comment sweep fails after the note is
// gone, the error is surfaced to the caller.
func (h *Handler) Delete(c *fiber.Ctx) error {
	ident, ok := auth.IdentityFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "note not found")
	}

	ref, err := h.Store.FindRef(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "note not found")
		}
		log.Printf("delete note: find: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete note")
	}
	if ref.Author != ident.ID {
		return fiber.NewError(fiber.StatusForbidden, "not allowed to delete this note")
	}

	if err := h.Store.Delete(c.UserContext(), id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "note not found")
		}
		log.Printf("delete note: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not delete note")
	}

	if _, err := h.Comments.DeleteByNote(c.UserContext(), id); err != nil {
		log.Printf("delete note: delete comments: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "note deleted but comments could not be removed")
	}

	return c.JSON(fiber.Map{"message": "note deleted"})
}

// ToggleLike flips the caller's membership in the like set. Membership is
// read first, then the flip itself is a single atomic set operation.
func (h *Handler) ToggleLike(c *fiber.Ctx) error {
	ident, ok := auth.IdentityFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "user not authenticated")
	}

	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "note not found")
	}

	ref, err := h.Store.FindRef(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "note not found")
		}
		log.Printf("toggle like: find: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not update note")
	}

	var note Note
	if ref.Liked(ident.ID) {
		note, err = h.Store.RemoveLike(c.UserContext(), id, ident.ID)
	} else {
		note, err = h.Store.AddLike(c.UserContext(), id, ident.ID)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusNotFound, "note not found")
		}
		log.Printf("toggle like: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not update note")
	}

	return c.JSON(note)
}
