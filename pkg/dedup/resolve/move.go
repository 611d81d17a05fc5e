package resolve

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// maxNameAttempts bounds the collision suffix search per file.
const maxNameAttempts = 1000

// ErrNameCollision is returned when no free destination name can be found
// within the attempt bound.
var ErrNameCollision = errors.New("no free destination name")

// collisionFreePath returns an unused path under dir for base, appending
// numeric suffixes (name_1.ext, name_2.ext, ...) until a free name is found.
// A name counts as used when it exists on disk or appears in taken, the set
// of destinations already claimed earlier in the same run; dry runs rely on
// taken alone since nothing lands on disk.
func collisionFreePath(dir, base string, taken map[string]bool) (string, error) {
	candidate := filepath.Join(dir, base)
	if !taken[candidate] && !pathExists(candidate) {
		return candidate, nil
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; i <= maxNameAttempts; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if !taken[candidate] && !pathExists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %q in %q", ErrNameCollision, base, dir)
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// moveFile renames src to dest, falling back to a copy and remove when the
// two paths live on different filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
			if err := copyFileContents(src, dest); err != nil {
				return fmt.Errorf("copy across devices: %w", err)
			}
			if err := os.Remove(src); err != nil {
				return fmt.Errorf("remove source after copy: %w", err)
			}
			return nil
		}
		return fmt.Errorf("move: %w", err)
	}
	return nil
}

func copyFileContents(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("copy data: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("sync destination: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}
