// Package credentials keeps provider API keys in the integration_tokens
// table so the relay can run without GEMINI_API_KEY in its environment.
package credentials

import (
	"context"
	"errors"
	"strings"

	"lockday/internal/infra"
	"lockday/internal/sqlinline"
)

const ProviderGemini = "gemini"

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	return s.Token(ctx, ProviderGemini)
}

// Token returns the stored token for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("gemini api key is required")
	}
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, ProviderGemini, key)
	return err
}

// ResolveGeminiAPIKey prefers envKey and falls back to the stored token.
// A nil store yields envKey unchanged.
func ResolveGeminiAPIKey(ctx context.Context, envKey string, store *Store) (string, error) {
	if key := strings.TrimSpace(envKey); key != "" || store == nil {
		return key, nil
	}
	return store.GeminiAPIKey(ctx)
}
