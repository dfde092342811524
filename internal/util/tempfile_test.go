package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEnsureDirectoryWritable(t *testing.T) {
	tmpDir := t.TempDir()
	if err := EnsureDirectoryWritable(tmpDir); err != nil {
		t.Errorf("Expected no error for writable dir, got %v", err)
	}

	if err := EnsureDirectoryWritable("/nonexistent/directory/path"); err == nil {
		t.Error("Expected error for non-existent directory")
	}

	tmpFile := filepath.Join(tmpDir, "testfile")
	if err := os.WriteFile(tmpFile, []byte("test"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDirectoryWritable(tmpFile); err == nil {
		t.Error("Expected error for file instead of directory")
	}
}

func TestCreateTempDir(t *testing.T) {
	baseDir := t.TempDir()

	tempDir, err := CreateTempDir(baseDir, "montage")
	if err != nil {
		t.Fatalf("CreateTempDir failed: %v", err)
	}
	t.Cleanup(func() { _ = tempDir.Cleanup() })

	info, err := os.Stat(tempDir.Path())
	if err != nil {
		t.Fatalf("Temp directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected a directory")
	}
	if !strings.HasPrefix(filepath.Base(tempDir.Path()), "montage_") {
		t.Errorf("Directory name should start with 'montage_', got %s", filepath.Base(tempDir.Path()))
	}
	if got := tempDir.Join("a.png"); filepath.Dir(got) != tempDir.Path() {
		t.Errorf("Join() = %s, want inside %s", got, tempDir.Path())
	}

	path := tempDir.Path()
	if err := tempDir.Cleanup(); err != nil {
		t.Errorf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Directory should be removed after cleanup")
	}
}

func TestPartialOutputPath(t *testing.T) {
	got := PartialOutputPath("/videos/out.mp4")
	if filepath.Dir(got) != "/videos" {
		t.Errorf("PartialOutputPath dir = %s, want /videos", filepath.Dir(got))
	}
	if filepath.Ext(got) != ".mp4" {
		t.Errorf("PartialOutputPath ext = %s, want .mp4", filepath.Ext(got))
	}
	if !strings.HasPrefix(filepath.Base(got), ".out.partial-") {
		t.Errorf("PartialOutputPath base = %s", filepath.Base(got))
	}
	if PartialOutputPath("/videos/out.mp4") == got {
		t.Error("PartialOutputPath should be unique per call")
	}
}

func TestCleanupStaleTempDirs(t *testing.T) {
	baseDir := t.TempDir()

	for i := range 3 {
		if err := os.Mkdir(filepath.Join(baseDir, "montage_old"+string(rune('0'+i))), 0755); err != nil {
			t.Fatal(err)
		}
	}
	otherPath := filepath.Join(baseDir, "other")
	if err := os.Mkdir(otherPath, 0755); err != nil {
		t.Fatal(err)
	}

	count, err := CleanupStaleTempDirs(baseDir, "montage", -time.Second)
	if err != nil {
		t.Fatalf("CleanupStaleTempDirs failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 dirs cleaned, got %d", count)
	}
	if _, err := os.Stat(otherPath); os.IsNotExist(err) {
		t.Error("Directory without prefix should not be removed")
	}
}

func TestCleanupStaleTempDirs_NonExistentDir(t *testing.T) {
	count, err := CleanupStaleTempDirs("/nonexistent/path", "montage", 0)
	if err != nil {
		t.Errorf("Should not error on non-existent dir: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 dirs cleaned, got %d", count)
	}
}

func TestGetAvailableSpace(t *testing.T) {
	if space := GetAvailableSpace("/nonexistent/path"); space != 0 {
		t.Errorf("Expected 0 for invalid path, got %d", space)
	}
	if !CheckDiskSpace(t.TempDir(), 1) {
		t.Error("CheckDiskSpace should report one free byte")
	}
}
