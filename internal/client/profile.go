package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
)

// Profile — профиль владельца текущего access-токена.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	const op = "client.Profile"

	var u models.User
	if err := c.Do(ctx, http.MethodGet, c.endpoints.Profile, nil, &u); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}
