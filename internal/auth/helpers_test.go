package auth

import (
	"time"

	"github.com/atlas-bank/atlas_bank/internal/config"
	"github.com/atlas-bank/atlas_bank/internal/identity"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		AccessTokenTTL: 20 * time.Minute,
	}
}

func testUser() identity.User {
	return identity.User{
		ID:       7,
		Username: "root",
		Role:     "admin",
	}
}
