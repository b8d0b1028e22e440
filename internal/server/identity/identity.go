// Package identity issues the guest tokens that name a player to the server.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "property-tycoon"

// ErrInvalidToken 令牌无效或已过期
var ErrInvalidToken = errors.New("invalid token")

// Claims 令牌载荷，Subject 为玩家 ID
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Player 已认证的玩家
type Player struct {
	ID        string
	Name      string
	ExpiresAt time.Time
}

// Issuer 签发与校验 HS256 令牌
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer 创建签发器
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue 为新玩家签发令牌
func (i *Issuer) Issue(name string) (string, Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", Player{}, fmt.Errorf("name is required")
	}
	now := i.now()
	p := Player{ID: uuid.NewString(), Name: name, ExpiresAt: now.Add(i.ttl)}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", Player{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, p, nil
}

// Verify 校验令牌并返回玩家
func (i *Issuer) Verify(raw string) (Player, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Player{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Player{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return Player{ID: claims.Subject, Name: claims.Name, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// FromHeader extracts the token of an "Authorization: Bearer" header.
func FromHeader(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
