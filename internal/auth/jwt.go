package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hugh/go-projects/pkg/crypto"
)

const (
	DefaultTokenTTL = 60 * time.Minute

	signingKeyBytes = 32
)

var ErrEmptySigningKey = errors.New("signing key must not be empty")

// Claims is the token payload: sub, email, iat and exp, nothing else.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 tokens. The key is fixed at
// construction and only read afterwards, so one instance is shared by all
// requests.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTService(secret []byte, ttl time.Duration) (*JWTService, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySigningKey
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &JWTService{
		secret: key,
		ttl:    ttl,
	}, nil
}

// GenerateSigningKey returns a random key for processes started without a
// configured secret.
func GenerateSigningKey() ([]byte, error) {
	return crypto.GenerateRandomBytes(signingKeyBytes)
}

// TTL is the lifetime given to tokens when Issue is called without one.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the user valid over [now, now+ttl). now is
// truncated to whole seconds, the precision of the iat and exp claims.
func (s *JWTService) Issue(userID uint, email string, now time.Time, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	issuedAt := now.Truncate(time.Second)

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate checks the signature and expiry of tokenString as of now.
func (s *JWTService) Validate(tokenString string, now time.Time) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, ErrTokenMalformedClaims
	}

	return claims, nil
}
