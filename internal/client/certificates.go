package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	apierrors "github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/errors"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
)

func (c *Client) Certificates(ctx context.Context) ([]models.Certificate, error) {
	return ListAll[models.Certificate](ctx, c, c.endpoints.Certificates)
}

// Download — тело файла; закрывать обязательно.
// Size == -1, если сервер не прислал Content-Length.
type Download struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

// DownloadCertificate отдаёт PDF сертификата. Используется ссылка File,
// если бэкенд её прислал, иначе {certificates}/{id}/download/.
func (c *Client) DownloadCertificate(ctx context.Context, cert models.Certificate) (*Download, error) {
	const op = "client.DownloadCertificate"

	path := cert.File
	if path == "" {
		path = resource(c.endpoints.Certificates, cert.ID, "download")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, transportError(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		return nil, fmt.Errorf("%s: %w", op, apierrors.FromResponse(resp.StatusCode, b, requestID(resp)))
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/pdf"
	}

	return &Download{ReadCloser: resp.Body, ContentType: ct, Size: resp.ContentLength}, nil
}
