package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/disk"
)

// TempDir is a scratch directory owned by one export run.
type TempDir struct {
	path string
}

// Path returns the directory path.
func (d *TempDir) Path() string {
	return d.path
}

// Join returns a path inside the directory.
func (d *TempDir) Join(name string) string {
	return filepath.Join(d.path, name)
}

// Cleanup removes the directory and everything in it.
func (d *TempDir) Cleanup() error {
	if d == nil || d.path == "" {
		return nil
	}
	return os.RemoveAll(d.path)
}

// NewRunID returns a short unique identifier for an export run.
func NewRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// CreateTempDir creates a directory named <prefix>_<run id> inside baseDir.
func CreateTempDir(baseDir, prefix string) (*TempDir, error) {
	if err := EnsureDirectory(baseDir); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", baseDir, err)
	}
	path := filepath.Join(baseDir, fmt.Sprintf("%s_%s", prefix, NewRunID()))
	if err := os.Mkdir(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	return &TempDir{path: path}, nil
}

// PartialOutputPath returns a hidden sibling of target used while the file
// is being written. It keeps target's extension so muxers pick the same
// container.
func PartialOutputPath(target string) string {
	dir := filepath.Dir(target)
	base := filepath.Base(target)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, fmt.Sprintf(".%s.partial-%s%s", stem, NewRunID(), ext))
}

// EnsureDirectoryWritable checks that path is a directory we can create files in.
func EnsureDirectoryWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	probe, err := os.CreateTemp(path, ".montage-probe-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", path, err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

// CleanupStaleTempDirs removes entries in baseDir starting with prefix+"_"
// that are older than maxAge. Returns the number of entries removed.
func CleanupStaleTempDirs(baseDir, prefix string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), prefix+"_") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(baseDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// GetAvailableSpace returns the free bytes on the filesystem holding path,
// or 0 when it cannot be determined.
func GetAvailableSpace(path string) uint64 {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0
	}
	return usage.Free
}

// CheckDiskSpace reports whether at least need bytes are free under path.
// Unknown free space counts as enough.
func CheckDiskSpace(path string, need uint64) bool {
	free := GetAvailableSpace(path)
	return free == 0 || free >= need
}
