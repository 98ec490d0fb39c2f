package utils

import (
	"errors"
	"os"
	"time"

	"solvit/config"

	"github.com/golang-jwt/jwt"
)

const developmentSecret = "solvit-development-secret"

func configuredSecret() string {
	if s := config.AppConfig.JWTSecret; s != "" {
		return s
	}
	return os.Getenv("JWT_SECRET")
}

// CheckJWTSecret fails in production when no signing secret is configured;
// elsewhere tokens fall back to a development secret.
func CheckJWTSecret() error {
	if config.IsProduction() && configuredSecret() == "" {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

func secretKey() []byte {
	if s := configuredSecret(); s != "" {
		return []byte(s)
	}
	return []byte(developmentSecret)
}

// GenerateToken creates a signed JWT whose subject is the provider id. The
// token expires after duration.
func GenerateToken(subject string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ExtractIDFromToken returns the subject of a valid token.
func ExtractIDFromToken(tokenString string) (string, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}
	return sub, nil
}
