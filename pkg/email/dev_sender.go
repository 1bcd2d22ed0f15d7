package email

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/accesskit/pkg/logger"
	"github.com/dmitrymomot/accesskit/pkg/sanitizer"
)

// DevSender writes every message to dir as <stamp>_<tag>.html with a
// matching .json metadata file.
type DevSender struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time

	mu  sync.Mutex
	seq int
}

// DevOption configures a DevSender.
type DevOption func(*DevSender)

// WithDevLogger logs the path of each written message.
func WithDevLogger(l *slog.Logger) DevOption {
	return func(d *DevSender) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDevClock replaces time.Now for file stamps.
func WithDevClock(now func() time.Time) DevOption {
	return func(d *DevSender) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDevSender creates a DevSender. The directory is created on first send.
func NewDevSender(dir string, opts ...DevOption) *DevSender {
	d := &DevSender{
		dir:    dir,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type emailMetadata struct {
	Timestamp string `json:"timestamp"`
	SendTo    string `json:"send_to"`
	Subject   string `json:"subject"`
	Tag       string `json:"tag,omitempty"`
}

func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrFailedToSendEmail, err)
	}

	now := d.now()
	identifier := params.Tag
	if identifier == "" {
		identifier = params.Subject
	}

	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.mu.Unlock()

	// Stamp and sequence keep names unique and sortable.
	base := fmt.Sprintf("%s-%04d_%s", now.Format("20060102T150405"), seq, sanitizeFilename(identifier))

	htmlPath := filepath.Join(d.dir, base+".html")
	if err := os.WriteFile(htmlPath, []byte(params.BodyHTML), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write HTML file: %v", ErrFailedToSendEmail, err)
	}

	meta, err := json.MarshalIndent(emailMetadata{
		Timestamp: now.Format(time.RFC3339),
		SendTo:    params.SendTo,
		Subject:   params.Subject,
		Tag:       params.Tag,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata: %v", ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), meta, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write JSON file: %v", ErrFailedToSendEmail, err)
	}

	d.logger.InfoContext(ctx, "email written to disk",
		logger.Email(sanitizer.MaskEmail(params.SendTo)),
		slog.String("path", htmlPath),
		logger.Component("email"),
	)
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
