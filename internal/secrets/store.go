// Package secrets stores OAuth refresh tokens in the system keyring, one per
// Google service scope.
package secrets

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/99designs/keyring"
)

type Store interface {
	SetToken(service string, tok Token) error
	GetToken(service string) (Token, error)
	DeleteToken(service string) error
	Services() ([]string, error)
}

type Token struct {
	Service      string    `json:"service"`
	Scopes       []string  `json:"scopes,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	RefreshToken string    `json:"-"`
}

type KeyringStore struct {
	ring keyring.Keyring
}

// OpenDefault opens the keyring. On headless systems without a secret service
// github.com/99designs/keyring falls back to its file backend, which needs a
// directory and a password prompt.
func OpenDefault(dir string) (Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      "sheetsync",
		FileDir:          dir,
		FilePasswordFunc: keyring.TerminalPrompt,
	})
	if err != nil {
		return nil, err
	}
	return &KeyringStore{ring: ring}, nil
}

// NewFromKeyring wraps an existing keyring, useful for tests.
func NewFromKeyring(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

type storedToken struct {
	RefreshToken string    `json:"refresh_token"`
	Scopes       []string  `json:"scopes,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

func (s *KeyringStore) SetToken(service string, tok Token) error {
	service = normalize(service)
	if service == "" {
		return fmt.Errorf("missing service")
	}
	if tok.RefreshToken == "" {
		return fmt.Errorf("missing refresh token")
	}
	if tok.CreatedAt.IsZero() {
		tok.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(storedToken{
		RefreshToken: tok.RefreshToken,
		Scopes:       tok.Scopes,
		CreatedAt:    tok.CreatedAt,
	})
	if err != nil {
		return err
	}
	return s.ring.Set(keyring.Item{
		Key:  tokenKey(service),
		Data: payload,
	})
}

func (s *KeyringStore) GetToken(service string) (Token, error) {
	service = normalize(service)
	if service == "" {
		return Token{}, fmt.Errorf("missing service")
	}
	it, err := s.ring.Get(tokenKey(service))
	if err != nil {
		return Token{}, err
	}
	var st storedToken
	if err := json.Unmarshal(it.Data, &st); err != nil {
		return Token{}, err
	}
	return Token{
		Service:      service,
		Scopes:       st.Scopes,
		CreatedAt:    st.CreatedAt,
		RefreshToken: st.RefreshToken,
	}, nil
}

func (s *KeyringStore) DeleteToken(service string) error {
	service = normalize(service)
	if service == "" {
		return fmt.Errorf("missing service")
	}
	return s.ring.Remove(tokenKey(service))
}

func (s *KeyringStore) Services() ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if service, ok := parseTokenKey(k); ok {
			out = append(out, service)
		}
	}
	return out, nil
}

func parseTokenKey(k string) (string, bool) {
	const prefix = "token:"
	if !strings.HasPrefix(k, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(k, prefix)
	if strings.TrimSpace(rest) == "" {
		return "", false
	}
	return rest, true
}

func tokenKey(service string) string {
	return fmt.Sprintf("token:%s", service)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
