// Package cookies reads session cookies exported from a desktop browser.
package cookies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/domain"
	"github.com/Chapstick53/phone-sms-api/internal/sms_scraper_service/navigator"
)

// FileSource loads a JSON array of cookies on every call, so a refreshed
// export is picked up without a restart.
type FileSource struct {
	path   string
	logger *slog.Logger
}

var _ navigator.CookieSource = (*FileSource)(nil)

func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

// Cookies returns the exported cookies. A missing file or empty path yields
// no cookies and no error. Entries without a name are dropped.
func (f *FileSource) Cookies(ctx context.Context) ([]domain.Cookie, error) {
	if strings.TrimSpace(f.path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		f.logger.DebugContext(ctx, "Cookie file not found, navigating without cookies", "path", f.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cookie file %s: %w", f.path, err)
	}

	var exported []domain.Cookie
	if err := json.Unmarshal(raw, &exported); err != nil {
		return nil, fmt.Errorf("decode cookie file %s: %w", f.path, err)
	}

	out := exported[:0]
	for _, c := range exported {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
