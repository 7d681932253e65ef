package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// forwardHeaders — заголовки, которые шлюз передаёт бэкенду от вызывающего.
var forwardHeaders = []string{"Accept", "Accept-Language", "Content-Type"}

// Forward отправляет произвольный запрос через аутентифицированную цепочку
// и возвращает ответ как есть (включая non-2xx). Закрыть тело — на вызывающем.
// Собственный токен вызывающего передаётся через ctx (interceptors.CtxAuthToken):
// WithMetadata выставит его явно, и Annotator его не заменит.
func (c *Client) Forward(ctx context.Context, method, pathAndQuery string, header http.Header, body io.Reader) (*http.Response, error) {
	const op = "client.Forward"

	req, err := http.NewRequestWithContext(ctx, method, c.URL(pathAndQuery), body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, h := range forwardHeaders {
		if v := header.Get(h); v != "" {
			req.Header.Set(h, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, transportError(err))
	}

	return resp, nil
}
