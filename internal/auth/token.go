package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaThHu/Notizen-App/internal/domain"
)

// Tokens issues and parses the HS256 session tokens. Handlers trust the
// identity carried by a valid token without re-checking credentials.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{secret: secret, ttl: ttl}
}

func (t *Tokens) Sign(ident domain.Identity) (string, error) {
	claims := jwt.MapClaims{
		"user_id": ident.ID.Hex(),
		"name":    ident.Name,
		"email":   ident.Email,
		"exp":     time.Now().Add(t.ttl).Unix(),
	}
	if ident.Image != nil {
		claims["image"] = *ident.Image
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) Parse(tokenStr string) (domain.Identity, error) {
	token, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Identity{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Identity{}, errors.New("invalid claims")
	}

	raw, _ := claims["user_id"].(string)
	uid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return domain.Identity{}, errors.New("invalid user_id claim")
	}

	ident := domain.Identity{ID: uid}
	ident.Name, _ = claims["name"].(string)
	ident.Email, _ = claims["email"].(string)
	if img, ok := claims["image"].(string); ok && img != "" {
		ident.Image = &img
	}
	return ident, nil
}
