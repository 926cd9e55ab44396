package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken indicates the bearer token failed verification.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrUnknownRole indicates the token carried no resolvable role claim.
	ErrUnknownRole = errors.New("auth: unknown role claim")
)

// IssueToken signs an HMAC token carrying the principal's id and role.
func IssueToken(secret []byte, p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(p.UserID, 10),
		"role": string(p.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies the token and extracts the principal. The role claim
// must resolve to a known role; anything else fails closed.
func ParseToken(secret []byte, tokenString string) (Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return Principal{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	rawRole, _ := claims["role"].(string)
	role, ok := ParseRole(rawRole)
	if !ok {
		return Principal{}, ErrUnknownRole
	}
	return Principal{UserID: userID, Role: role}, nil
}
