package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// Store uploads a file to an external image host and returns the hosted
// URL. Callers only ever consume the URL string.
type Store interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// ObjectKey builds a date-partitioned unique object key, preserving the
// original file extension.
func ObjectKey(prefix, filename string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("%s/%d/%02d/%s%s", prefix, d.Year(), int(d.Month()), uuid.New(), path.Ext(filename))
}
