package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleStaff = "staff"

	tokenTTL = 24 * time.Hour
)

type JWTClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func jwtKey() ([]byte, error) {
	// read at call time so tests and the CLI can set it late
	key := []byte(os.Getenv("JWT_SECRET"))
	if len(key) == 0 {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return key, nil
}

// GenerateToken signs an HS256 token for userID with the given role.
func GenerateToken(userID string, role string) (string, error) {
	key, err := jwtKey()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := JWTClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "rental-server",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// VerifyToken parses and validates a token string.
func VerifyToken(tokenStr string) (*JWTClaims, error) {
	key, err := jwtKey()
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenStr, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
