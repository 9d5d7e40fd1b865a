package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"log/slog"

	"github.com/Vansh983/ai-ta/config"
	"github.com/Vansh983/ai-ta/middleware"
	"github.com/Vansh983/ai-ta/model"
)

func generateJWTSecret() (string, error) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(key), nil
}

func main() {
	email := flag.String("email", "", "mint an instructor token for this email instead of generating a secret")
	flag.Parse()

	if *email == "" {
		secret, err := generateJWTSecret()
		if err != nil {
			slog.Error("Error generating secret", "err", err)
			return
		}
		slog.Info("Generated JWT Secret:", "secret", secret)
		return
	}

	if err := config.Load(); err != nil {
		slog.Error("Failed to load config", "err", err)
		return
	}

	token, err := middleware.GenerateToken(*email, string(model.RoleInstructor))
	if err != nil {
		slog.Error("Error generating token", "err", err)
		return
	}
	slog.Info("Generated instructor token:", "token", token)
}
