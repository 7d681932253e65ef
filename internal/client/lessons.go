package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
)

func (c *Client) Lesson(ctx context.Context, id int64) (*models.Lesson, error) {
	const op = "client.Lesson"

	var out models.Lesson
	if err := c.Do(ctx, http.MethodGet, resource(c.endpoints.Lessons, id), nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// CompleteLesson отмечает урок пройденным.
func (c *Client) CompleteLesson(ctx context.Context, id int64) error {
	const op = "client.CompleteLesson"

	if err := c.Do(ctx, http.MethodPost, resource(c.endpoints.Lessons, id, "complete"), nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) Test(ctx context.Context, id int64) (*models.Test, error) {
	const op = "client.Test"

	var out models.Test
	if err := c.Do(ctx, http.MethodGet, resource(c.endpoints.Tests, id), nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// SubmitTest отправляет ответы; оценку выставляет бэкенд.
func (c *Client) SubmitTest(ctx context.Context, id int64, answers []models.Answer) (*models.TestResult, error) {
	const op = "client.SubmitTest"

	in := struct {
		Answers []models.Answer `json:"answers"`
	}{Answers: answers}

	var out models.TestResult
	if err := c.Do(ctx, http.MethodPost, resource(c.endpoints.Tests, id, "submit"), in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}
