package pgx

import (
	"context"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
)

// ActiveTemplate returns the enabled prompt template for a business code.
// When several versions are enabled the newest one wins.
func (s *Store) ActiveTemplate(ctx context.Context, businessCode string) (string, error) {
	var content string
	err := s.conn.QueryRow(ctx,
		`SELECT content
		 FROM kb_prompt
		 WHERE business_code = $1 AND enabled
		 ORDER BY updated_at DESC
		 LIMIT 1`,
		businessCode,
	).Scan(&content)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return "", fmt.Errorf("no enabled prompt template for business code %s", businessCode)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query prompt template for %s: %w", businessCode, err)
	}
	return content, nil
}
