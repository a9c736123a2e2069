package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash keeps the bcrypt comparison on the failure path so login
// timing does not reveal whether the email exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges admin credentials for a signed token.
func (a *API) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Requisição inválida.",
		})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	storedHash := a.Config.AdminPasswordHash
	emailMatches := req.Email != "" && req.Email == strings.ToLower(a.Config.AdminEmail)
	if !emailMatches || storedHash == "" {
		storedHash = dummyHash
	}

	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.Password))
	if !emailMatches || err != nil {
		a.Logger.Warn("Failed login attempt", slog.String("email", req.Email), slog.String("ip", c.IP()))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Credenciais inválidas.",
		})
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"email": req.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Duration(a.Config.TokenTTLHours) * time.Hour).Unix(),
	}
	token, signErr := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.Config.JWTSecret))
	if signErr != nil {
		return a.fail(c, "Failed to sign token", signErr)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  fiber.Map{"email": req.Email},
	})
}
