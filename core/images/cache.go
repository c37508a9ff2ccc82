// Package images downloads product photos into a local directory for the
// duration of a single reply and removes them right after the photo has been
// handed to the chat transport.
package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/m3rciful/seashop/core/logger"
)

// Cache writes single-use image files under a configured directory.
type Cache struct {
	dir   string
	httpc *http.Client
}

// New creates the image directory if absent and returns a Cache over it.
func New(dir string, httpc *http.Client) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("images: create dir %s: %w", dir, err)
	}
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Cache{dir: dir, httpc: httpc}, nil
}

// Acquire downloads the resource and returns the local file path. The file
// name combines the product name with the extension parsed from the URL's
// path component; the query string is ignored. Callers must Release the path
// on every exit path, even when sending the photo fails.
func (c *Cache) Acquire(ctx context.Context, rawURL, productName string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("images: download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("images: download %s: unexpected status %s", rawURL, resp.Status)
	}

	dest := filepath.Join(c.dir, productName+Extension(rawURL))
	file, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("images: create %s: %w", dest, err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("images: write %s: %w", dest, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("images: close %s: %w", dest, err)
	}
	return dest, nil
}

// Release deletes a previously acquired file. Failures are logged only;
// the reply has already been delivered at this point.
func (c *Cache) Release(ctx context.Context, filePath string) {
	if filePath == "" {
		return
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		logger.Warn(ctx, "images", "release.fail",
			slog.String("path", filePath),
			slog.String("err", err.Error()),
		)
	}
}

// Extension parses the file extension out of the URL's path component.
// An unparseable URL yields an empty extension.
func Extension(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	unescaped, err := url.PathUnescape(parsed.Path)
	if err != nil {
		unescaped = parsed.Path
	}
	return path.Ext(unescaped)
}
