// Package nonce issues and verifies short-lived request tokens bound to a caller and an action.
// A token is a HS256-signed JWT carrying the action, the caller login and a unique id. Only the
// most recently issued token for a given caller and action is accepted, older ones are rejected
// even if not expired yet.
package nonce

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

const issuer = "viteadmin"

// Issuer mints and checks request tokens
type Issuer struct {
	secret []byte
	ttl    time.Duration
	latest *lru.Cache[string, string] // subject+action -> jti of the last issued token
	now    func() time.Time
}

type claims struct {
	Action string `json:"act"`
	jwt.RegisteredClaims
}

// New makes an issuer. cacheSize limits how many (caller, action) pairs are tracked,
// tokens of evicted pairs stop being valid.
func New(secret string, ttl time.Duration, cacheSize int) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("empty nonce secret")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid nonce ttl %v", ttl)
	}
	latest, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("make token cache: %w", err)
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, latest: latest, now: time.Now}, nil
}

// Issue creates a new token for subject and action. It replaces any earlier token for the same pair.
func (i *Issuer) Issue(subject, action string) (string, error) {
	if subject == "" || action == "" {
		return "", errors.New("subject and action required")
	}

	now := i.now()
	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Action: action,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	i.latest.Add(pairKey(subject, action), jti)
	return signed, nil
}

// Verify checks that token is valid, unexpired, issued for subject and action,
// and is the latest one issued for this pair
func (i *Issuer) Verify(token, subject, action string) bool {
	if token == "" || subject == "" || action == "" {
		return false
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return false
	}
	if c.Action != action {
		return false
	}

	jti, ok := i.latest.Get(pairKey(subject, action))
	return ok && jti == c.ID
}

func pairKey(subject, action string) string {
	return subject + "\x00" + action
}
