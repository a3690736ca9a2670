package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaThHu/Notizen-App/internal/auth"
	"github.com/JaThHu/Notizen-App/internal/domain"
)

func TestTokensRoundtrip(t *testing.T) {
	tokens := auth.NewTokens([]byte("test-secret"), time.Hour)

	img := "https://example.com/ana.png"
	ident := domain.Identity{
		ID:    primitive.NewObjectID(),
		Name:  "Ana",
		Email: "ana@x.com",
		Image: &img,
	}

	signed, err := tokens.Sign(ident)
	require.NoError(t, err)

	parsed, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, ident, parsed)
}

func TestTokensRejectsWrongSecret(t *testing.T) {
	tokens := auth.NewTokens([]byte("test-secret"), time.Hour)
	other := auth.NewTokens([]byte("other-secret"), time.Hour)

	signed, err := tokens.Sign(domain.Identity{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	_, err = other.Parse(signed)
	assert.Error(t, err)
}

func TestTokensRejectsExpired(t *testing.T) {
	tokens := auth.NewTokens([]byte("test-secret"), -time.Minute)

	signed, err := tokens.Sign(domain.Identity{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	_, err = tokens.Parse(signed)
	assert.Error(t, err)
}

func TestTokensRejectsGarbage(t *testing.T) {
	tokens := auth.NewTokens([]byte("test-secret"), time.Hour)

	_, err := tokens.Parse("not-a-token")
	assert.Error(t, err)
}
