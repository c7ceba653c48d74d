package test

import (
	"errors"

	"github.com/google/uuid"

	pkgAuth "github.com/printflow/printflow/internal/pkg/auth"
)

// HasherStub provides deterministic hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied password.
func (h HasherStub) Hash(password string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(password)
	}
	return "hash:" + password, nil
}

// Compare validates password against stored hash.
func (h HasherStub) Compare(hash string, password string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, password)
	}
	if hash != "hash:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn func(uuid.UUID) (string, error)
	ParseFn func(string) (uuid.UUID, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(userID uuid.UUID) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(userID)
	}
	return "token:" + userID.String(), nil
}

// ParseToken parses previously issued token strings.
func (s StrategyStub) ParseToken(token string) (uuid.UUID, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	id, err := uuid.Parse(trimTokenPrefix(token))
	if err != nil {
		return uuid.Nil, pkgAuth.ErrInvalidToken
	}
	return id, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

func trimTokenPrefix(token string) string {
	const prefix = "token:"
	if len(token) > len(prefix) && token[:len(prefix)] == prefix {
		return token[len(prefix):]
	}
	return token
}

// TokenParserStub implements middleware token parsing contract.
type TokenParserStub struct {
	ID      uuid.UUID
	Err     error
	ParseFn func(string) (uuid.UUID, error)
}

// ParseToken either delegates to override or returns predefined result.
func (s TokenParserStub) ParseToken(token string) (uuid.UUID, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	if s.Err != nil {
		return uuid.Nil, s.Err
	}
	return s.ID, nil
}

var _ pkgAuth.PasswordHasher = HasherStub{}
var _ pkgAuth.Strategy = StrategyStub{}
