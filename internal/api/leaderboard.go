package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

const leaderboardPath = "/api/leaderboard"

// Leaderboard returns the ranking. The current_user row depends on the
// token, so cached copies are keyed per token.
func (c *Client) Leaderboard(ctx context.Context) (*Leaderboard, error) {
	sum := sha256.Sum256([]byte(c.token()))
	key := leaderboardPath + "#" + hex.EncodeToString(sum[:8])

	var lb Leaderboard
	if err := c.getCached(ctx, leaderboardPath, key, &lb); err != nil {
		return nil, err
	}
	return &lb, nil
}
