package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/CiZaii/ai-middle-platform/pkg/llm"
)

// RuntimeConfig resolves the model endpoint and one usable credential for
// a business code, skipping credentials that already failed this run.
// Least recently used credentials are tried first. When every credential
// is exhausted the error wraps llm.ErrNoCredential.
func (s *Store) RuntimeConfig(ctx context.Context, businessCode string, attempted map[string]bool) (*llm.RuntimeConfig, error) {
	attemptedIDs := make([]string, 0, len(attempted))
	for keyID := range attempted {
		attemptedIDs = append(attemptedIDs, keyID)
	}

	cfg := &llm.RuntimeConfig{}
	var apiKey string
	err := s.conn.QueryRow(ctx,
		`SELECT me.provider, me.base_url, mb.model_name, mk.id, mk.api_key, me.supports_schema
		 FROM model_business mb
		 JOIN model_endpoint me ON me.id = mb.endpoint_id AND me.enabled
		 JOIN model_api_key mk ON mk.endpoint_id = me.id AND mk.enabled
		 WHERE mb.business_code = $1 AND mb.enabled
		   AND NOT (mk.id = ANY($2::text[]))
		 ORDER BY mk.last_used_at ASC NULLS FIRST
		 LIMIT 1`,
		businessCode, attemptedIDs,
	).Scan(&cfg.Provider, &cfg.BaseURL, &cfg.Model, &cfg.KeyID, &apiKey, &cfg.SupportsSchema)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, fmt.Errorf("business code %s: %w", businessCode, llm.ErrNoCredential)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve model config for %s: %w", businessCode, err)
	}

	cfg.APIKey = apiKey
	cfg.DisplayKey = maskKey(apiKey)
	return cfg, nil
}

// RecordKeyUsage updates per-credential usage counters after an attempt.
func (s *Store) RecordKeyUsage(ctx context.Context, keyID string, success bool, errorMessage string) error {
	var err error
	if success {
		_, err = s.conn.Exec(ctx,
			`UPDATE model_api_key
			 SET success_count = success_count + 1,
			     last_used_at = now(),
			     last_error = NULL
			 WHERE id = $1`,
			keyID,
		)
	} else {
		_, err = s.conn.Exec(ctx,
			`UPDATE model_api_key
			 SET failure_count = failure_count + 1,
			     last_used_at = now(),
			     last_error = $2
			 WHERE id = $1`,
			keyID, errorMessage,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to record usage for key %s: %w", keyID, err)
	}
	return nil
}

func maskKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:4] + "****" + apiKey[len(apiKey)-4:]
}
