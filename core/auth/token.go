package auth

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core"
)

var (
	// SigningMethod signs and verifies every token issued by the API.
	SigningMethod = jwt.SigningMethodHS512

	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is what a token asserts about its bearer.
type Identity struct {
	CPF   string
	Nome  string
	Email string
}

// Claims represents the authorization claims transmitted via a JWT. Subject holds the CPF.
type Claims struct {
	jwt.StandardClaims
	Nome  string `json:"nome,omitempty"`
	Email string `json:"email,omitempty"`
}

func (c Claims) Identity() Identity {
	return Identity{CPF: c.Subject, Nome: c.Nome, Email: c.Email}
}

type TokenIssuer interface {
	Issue(id Identity) (string, error)
}

type JWTIssuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	clock  core.Clock
}

var _ TokenIssuer = (*JWTIssuer)(nil)

func NewJWTIssuer(conf *core.Config, clock core.Clock) *JWTIssuer {
	return &JWTIssuer{
		key:    []byte(conf.SecretKey),
		issuer: conf.AppName,
		ttl:    conf.Server.JWTExpirationDelta,
		clock:  clock,
	}
}

func (iss *JWTIssuer) Key() []byte {
	return iss.key
}

func (iss *JWTIssuer) claims(id Identity) *Claims {
	now := iss.clock.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    iss.issuer,
			Subject:   id.CPF,
			ExpiresAt: now.Add(iss.ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Nome:  id.Nome,
		Email: id.Email,
	}
}

// Issue generates a signed JWT token string representing the Identity.
func (iss *JWTIssuer) Issue(id Identity) (string, error) {
	token := jwt.NewWithClaims(SigningMethod, iss.claims(id))
	ss, err := token.SignedString(iss.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (iss *JWTIssuer) Parse(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != SigningMethod.Alg() {
			return nil, ErrInvalidToken
		}
		return iss.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
