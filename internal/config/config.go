package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds everything the process reads from the environment.
type Config struct {
	Port       string
	MongoURI   string
	MongoDB    string
	JWTSecret  []byte
	JWTTTL     time.Duration
	CORSOrigin string
	BcryptCost int
}

// Load reads an optional .env file and then the environment. JWT_SECRET is
// the only required variable; everything else has a default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getenv("PORT", "8080"),
		MongoURI:   getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:    getenv("MONGODB_DB", "notizen"),
		JWTTTL:     24 * time.Hour,
		CORSOrigin: getenv("CORS_ORIGIN", "*"),
		BcryptCost: bcrypt.DefaultCost,
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	cfg.JWTSecret = []byte(secret)

	if v := strings.TrimSpace(os.Getenv("JWT_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_TTL %q: %w", v, err)
		}
		cfg.JWTTTL = d
	}

	if v := strings.TrimSpace(os.Getenv("BCRYPT_COST")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < bcrypt.MinCost || n > bcrypt.MaxCost {
			return nil, fmt.Errorf("invalid BCRYPT_COST %q", v)
		}
		cfg.BcryptCost = n
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
