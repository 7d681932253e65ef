package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
)

// maxPages — защита от зацикленной пагинации.
const maxPages = 1000

// ListAll проходит по страницам DRF, следуя next, и собирает все элементы.
// Ответ-массив считается единственной страницей.
func ListAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	const op = "client.ListAll"

	var all []T
	seen := map[string]bool{}

	for next := path; next != ""; {
		if seen[next] || len(seen) >= maxPages {
			return nil, fmt.Errorf("%s: pagination loop at %q", op, next)
		}
		seen[next] = true

		var p models.Page[T]
		if err := c.Do(ctx, http.MethodGet, next, nil, &p); err != nil {
			return nil, err
		}

		all = append(all, p.Results...)
		next = p.Next
	}

	return all, nil
}
