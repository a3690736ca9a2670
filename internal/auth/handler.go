package auth

import (
	"errors"
	"log"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JaThHu/Notizen-App/internal/domain"
)

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Handler struct {
	Store  Store
	Hasher *Hasher
	Tokens *Tokens
}

func NewHandler(store Store, hasher *Hasher, tokens *Tokens) *Handler {
	return &Handler{Store: store, Hasher: hasher, Tokens: tokens}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  domain.Identity `json:"user"`
}

// Register validates input before any store access, then relies on the
// unique email index for conflict detection.
func (h *Handler) Register(c *fiber.Ctx) error {
	var body registerRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	if body.Name == "" || body.Email == "" || body.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name, email and password are required")
	}
	if !emailPattern.MatchString(body.Email) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid email format")
	}
	if len(body.Password) < minPasswordLen {
		return fiber.NewError(fiber.StatusBadRequest, "password must be at least 6 characters")
	}

	hash, err := h.Hasher.Hash(body.Password)
	if err != nil {
		log.Printf("register: hash password: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not create user")
	}

	user, err := h.Store.Insert(c.UserContext(), body.Name, body.Email, hash)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fiber.NewError(fiber.StatusConflict, "email is already registered")
		}
		log.Printf("register: insert user: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not create user")
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login verifies credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (h *Handler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || body.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password are required")
	}

	user, err := h.Store.FindByEmail(c.UserContext(), email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		log.Printf("login: find user: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}

	if !h.Hasher.Verify(body.Password, user.PasswordHash) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	ident := user.Identity()
	token, err := h.Tokens.Sign(ident)
	if err != nil {
		log.Printf("login: sign token: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "could not create token")
	}

	return c.JSON(loginResponse{Token: token, User: ident})
}

// Me returns the authenticated caller.
func (h *Handler) Me(c *fiber.Ctx) error {
	ident, ok := IdentityFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "user not authenticated")
	}
	return c.JSON(ident)
}
