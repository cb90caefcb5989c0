package service

import (
	"time"

	"github.com/atlas-shop/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenHours = 24

// tokenWindow 按配置计算签发与过期时间
func tokenWindow(cfg config.JWTConfig) (jwt.RegisteredClaims, time.Time) {
	hours := cfg.ExpireHours
	if hours <= 0 {
		hours = defaultTokenHours
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}, expiresAt
}

func signToken(secret string, claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// parseToken 仅接受 HS256，claims 由调用方提供具体类型
func parseToken[C jwt.Claims](secret, raw string, claims C) (C, error) {
	var zero C
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return zero, err
	}
	if !token.Valid {
		return zero, ErrTokenInvalid
	}
	return claims, nil
}
