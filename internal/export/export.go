// export выгружает PDF сертификатов пользователя в приёмник:
// локальный каталог (DirSink) или S3/MinIO-бакет (S3Sink).
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/client"
	"github.com/nekroORGANIZATION/BrainBoostFront-sub002/internal/models"
)

// Sink — приёмник файлов. size == -1, если размер заранее неизвестен.
type Sink interface {
	Put(ctx context.Context, name, contentType string, r io.Reader, size int64) error
}

// Source — откуда брать сертификаты; реализуется *client.Client.
type Source interface {
	Certificates(ctx context.Context) ([]models.Certificate, error)
	DownloadCertificate(ctx context.Context, cert models.Certificate) (*client.Download, error)
}

type Exporter struct {
	src  Source
	sink Sink
	log  *slog.Logger
}

func New(src Source, sink Sink, log *slog.Logger) *Exporter {
	if log == nil {
		log = slog.Default()
	}

	return &Exporter{src: src, sink: sink, log: log}
}

// Export копирует все сертификаты и возвращает число записанных.
// Ошибка отдельного сертификата не останавливает выгрузку остальных;
// все такие ошибки возвращаются вместе.
func (e *Exporter) Export(ctx context.Context) (int, error) {
	const op = "export.Export"

	certs, err := e.src.Certificates(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var (
		n    int
		errs []error
	)
	for _, c := range certs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		name := FileName(c)
		if err := e.one(ctx, c, name); err != nil {
			e.log.Warn("certificate_export_failed",
				slog.String("op", op),
				slog.Int64("certificate_id", c.ID),
				slog.String("err", err.Error()),
			)
			errs = append(errs, fmt.Errorf("certificate %d: %w", c.ID, err))
			continue
		}

		n++
		e.log.Info("certificate_exported",
			slog.String("op", op),
			slog.Int64("certificate_id", c.ID),
			slog.String("name", name),
		)
	}

	if len(errs) > 0 {
		return n, fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}

	return n, nil
}

func (e *Exporter) one(ctx context.Context, c models.Certificate, name string) error {
	d, err := e.src.DownloadCertificate(ctx, c)
	if err != nil {
		return err
	}
	defer d.Close()

	return e.sink.Put(ctx, name, d.ContentType, d, d.Size)
}

// FileName: certificate-12-go-basics.pdf.
func FileName(c models.Certificate) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, c.CourseTitle)
	slug = strings.Trim(slug, "-")

	if slug == "" {
		return fmt.Sprintf("certificate-%d.pdf", c.ID)
	}

	return fmt.Sprintf("certificate-%d-%s.pdf", c.ID, slug)
}
