// Package artifacts writes audio returned by the backend to the artifact
// directory under stable, collision-free names.
package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gofrs/flock"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	lockFile     = ".anchor.lock"
	maxSlugRunes = 48
	maxAttempts  = 100
)

var extensions = map[string]string{
	"audio/mpeg":   ".mp3",
	"audio/mp3":    ".mp3",
	"audio/wav":    ".wav",
	"audio/x-wav":  ".wav",
	"audio/wave":   ".wav",
	"audio/ogg":    ".ogg",
	"audio/aac":    ".aac",
	"audio/mp4":    ".m4a",
	"audio/x-m4a":  ".m4a",
	"audio/webm":   ".webm",
	"audio/flac":   ".flac",
	"audio/x-flac": ".flac",
}

// Store saves artifacts into a directory shared by every console process.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created lazily.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the artifact directory.
func (s *Store) Dir() string {
	return s.dir
}

// SaveAudio writes data as <slug>-<timestamp><ext> and returns the full path.
// The directory lock keeps two consoles from picking the same name.
func (s *Store) SaveAudio(topic string, data []byte, contentType string, at time.Time) (string, error) {
	if len(data) == 0 {
		return "", errors.New("artifacts: empty audio payload")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("artifacts: create directory %q: %w", s.dir, err)
	}

	lock := flock.New(filepath.Join(s.dir, lockFile))
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("artifacts: lock %q: %w", s.dir, err)
	}
	defer lock.Unlock()

	base := fmt.Sprintf("%s-%s", Slug(topic), at.UTC().Format("20060102-150405"))
	ext := Extension(contentType)
	for i := 1; i <= maxAttempts; i++ {
		name := base + ext
		if i > 1 {
			name = fmt.Sprintf("%s-%d%s", base, i, ext)
		}
		path := filepath.Join(s.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("artifacts: create %q: %w", path, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("artifacts: write %q: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("artifacts: close %q: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("artifacts: no free name for %q after %d attempts", base, maxAttempts)
}

// Extension maps an audio content type to a file extension, defaulting to .mp3.
func Extension(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".mp3"
	}
	if ext, ok := extensions[strings.ToLower(mt)]; ok {
		return ext
	}
	return ".mp3"
}

// Slug turns a topic into a lowercase ASCII file name stem.
func Slug(topic string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, topic)
	if err != nil {
		folded = topic
	}

	var b strings.Builder
	dash := false
	n := 0
	for _, r := range strings.ToLower(folded) {
		if n >= maxSlugRunes {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			n++
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
			n++
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return "artifact"
	}
	return slug
}
