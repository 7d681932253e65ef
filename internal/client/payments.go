package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
)

// Платежи оформляются бэкендом; клиент получает ссылку на checkout
// PayPal/Coinbase и отдаёт её пользователю.

func (c *Client) CreatePayPalOrder(ctx context.Context, courseID int64) (*models.PayPalOrder, error) {
	const op = "client.CreatePayPalOrder"

	var out models.PayPalOrder
	in := map[string]int64{"course_id": courseID}
	if err := c.Do(ctx, http.MethodPost, c.endpoints.PayPalCreate, in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (c *Client) CapturePayPalOrder(ctx context.Context, orderID string) (*models.PayPalOrder, error) {
	const op = "client.CapturePayPalOrder"

	var out models.PayPalOrder
	in := map[string]string{"order_id": orderID}
	if err := c.Do(ctx, http.MethodPost, c.endpoints.PayPalCapture, in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (c *Client) CreateCoinbaseCharge(ctx context.Context, courseID int64) (*models.CoinbaseCharge, error) {
	const op = "client.CreateCoinbaseCharge"

	var out models.CoinbaseCharge
	in := map[string]int64{"course_id": courseID}
	if err := c.Do(ctx, http.MethodPost, c.endpoints.CoinbaseCreate, in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}
