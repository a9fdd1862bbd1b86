package receipt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/the-receipts-must-flow/internal/common"
)

// DefaultMaxAttempts bounds the suffixes tried by Publish.
const DefaultMaxAttempts = 10000

// Publish writes data under an unused path derived from base and returns it.
// The candidates are base, then stem_2.ext, stem_3.ext and so on. The bytes
// are written to a hidden temp file first and hard-linked onto the first free
// candidate, so a visible receipt is always complete and concurrent callers in
// the same filesystem never receive the same path.
func Publish(base string, data []byte, maxAttempts int) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	tmp, err := writeTemp(filepath.Dir(base), data)
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(tmp) }()

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 1; i <= maxAttempts; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}

		err := os.Link(tmp, candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: %s after %d attempts", common.ErrPathExhausted, base, maxAttempts)
}

// writeTemp stores data in a synced dotfile inside dir.
func writeTemp(dir string, data []byte) (name string, err error) {
	tmp, err := os.CreateTemp(dir, ".receipt-*.tmp")
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return "", err
	}
	if err = tmp.Sync(); err != nil {
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", err
	}
	return tmp.Name(), nil
}
