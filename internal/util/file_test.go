package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveOutputArg(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "intro.yaml")
	if err := os.WriteFile(input, []byte("width: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		input    string
		output   string
		wantDir  string
		wantFile string
		wantErr  bool
	}{
		{"file to mp4", input, "/out/final.mp4", "/out", "final.mp4", false},
		{"file to mkv", input, "clip.mkv", ".", "clip.mkv", false},
		{"file to directory", input, "/out", "/out", "", false},
		{"unsupported container", input, "/out/final.avi", "", "", true},
		{"directory input", dir, "/out/final.mp4", "/out/final.mp4", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveOutputArg(tt.input, tt.output)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveOutputArg() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.OutputDir != tt.wantDir || got.FilenameOverride != tt.wantFile {
				t.Errorf("ResolveOutputArg() = %+v, want dir %q file %q", got, tt.wantDir, tt.wantFile)
			}
		})
	}
}

func TestResolveOutputPath(t *testing.T) {
	if got := ResolveOutputPath("/in/intro.yaml", "/out", ""); got != "/out/intro.mp4" {
		t.Errorf("ResolveOutputPath() = %s, want /out/intro.mp4", got)
	}
	if got := ResolveOutputPath("/in/intro.yaml", "/out", "x.mkv"); got != "/out/x.mkv" {
		t.Errorf("ResolveOutputPath() = %s, want /out/x.mkv", got)
	}
}

func TestIsCompositionFile(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "a.YML")
	txt := filepath.Join(dir, "a.txt")
	for _, p := range []string{yml, txt} {
		if err := os.WriteFile(p, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if !IsCompositionFile(yml) {
		t.Error("expected .YML to be a composition file")
	}
	if IsCompositionFile(txt) || IsCompositionFile(dir) {
		t.Error("expected .txt and directories to be rejected")
	}
}
