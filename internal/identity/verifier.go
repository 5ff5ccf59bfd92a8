package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

// TokenVerifier checks Supabase access tokens against the project's JWT
// secret without calling the provider.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

func (v *TokenVerifier) Verify(tokenString string) (*User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrUnauthenticated
	}
	if _, ok := claims["exp"]; !ok {
		return nil, fmt.Errorf("%w: token has no expiry", ErrUnauthenticated)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	if _, err := uuid.Parse(sub); err != nil {
		return nil, fmt.Errorf("%w: token subject is not a user id", ErrUnauthenticated)
	}

	email, _ := claims["email"].(string)
	metadata, _ := claims["user_metadata"].(map[string]interface{})
	return &User{
		ID:        sub,
		Email:     email,
		FullName:  firstNonEmpty(stringFromMap(metadata, "full_name"), stringFromMap(metadata, "name")),
		AvatarURL: stringFromMap(metadata, "avatar_url"),
	}, nil
}
