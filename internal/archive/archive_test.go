package archive

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"repocat/internal/config"
)

// openArchives returns the backends that can run without external services.
func openArchives(t *testing.T) map[string]Archive {
	t.Helper()

	fs, err := NewFileSystemArchive("local", filepath.Join(t.TempDir(), "archive"))
	if err != nil {
		t.Fatalf("NewFileSystemArchive() error = %v", err)
	}
	return map[string]Archive{
		"filesystem": fs,
		"memory":     NewMemoryArchive("test"),
	}
}

func TestArchive_PushPull(t *testing.T) {
	ctx := context.Background()

	for name, a := range openArchives(t) {
		t.Run(name, func(t *testing.T) {
			blob := "snapshot contents"
			if err := a.Push(ctx, "github/snapshot-001.jsonl.gz", strings.NewReader(blob)); err != nil {
				t.Fatalf("Push() error = %v", err)
			}

			var buf bytes.Buffer
			if err := a.Pull(ctx, "github/snapshot-001.jsonl.gz", &buf); err != nil {
				t.Fatalf("Pull() error = %v", err)
			}
			if buf.String() != blob {
				t.Errorf("Pull() = %q, want %q", buf.String(), blob)
			}

			ok, err := a.Exists(ctx, "github/snapshot-001.jsonl.gz")
			if err != nil || !ok {
				t.Errorf("Exists() = %v, %v; want true", ok, err)
			}
		})
	}
}

func TestArchive_PullMissing(t *testing.T) {
	ctx := context.Background()

	for name, a := range openArchives(t) {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := a.Pull(ctx, "nope", &buf); !errors.Is(err, ErrNotFound) {
				t.Errorf("Pull() error = %v, want ErrNotFound", err)
			}
			ok, err := a.Exists(ctx, "nope")
			if err != nil || ok {
				t.Errorf("Exists() = %v, %v; want false", ok, err)
			}
		})
	}
}

func TestArchive_PushReplaces(t *testing.T) {
	ctx := context.Background()

	for name, a := range openArchives(t) {
		t.Run(name, func(t *testing.T) {
			if err := a.Push(ctx, "k", strings.NewReader("v1")); err != nil {
				t.Fatalf("Push() error = %v", err)
			}
			if err := a.Push(ctx, "k", strings.NewReader("v2")); err != nil {
				t.Fatalf("second Push() error = %v", err)
			}

			var buf bytes.Buffer
			if err := a.Pull(ctx, "k", &buf); err != nil {
				t.Fatalf("Pull() error = %v", err)
			}
			if buf.String() != "v2" {
				t.Errorf("Pull() = %q, want %q", buf.String(), "v2")
			}
		})
	}
}

func TestFileSystemArchive_ValidateSetup(t *testing.T) {
	root := filepath.Join(t.TempDir(), "archive")
	a, err := NewFileSystemArchive("local", root)
	if err != nil {
		t.Fatalf("NewFileSystemArchive() error = %v", err)
	}
	if err := a.ValidateSetup(context.Background()); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}

	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}
	if err := a.ValidateSetup(context.Background()); err == nil {
		t.Error("ValidateSetup() succeeded after root removal")
	}
}

func TestNewArchiveFromConfig(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     config.ArchiveConfig
		wantErr bool
	}{
		{"memory", config.ArchiveConfig{Type: "memory", Name: "m"}, false},
		{"filesystem", config.ArchiveConfig{Type: "filesystem", Name: "f", FSRoot: t.TempDir()}, false},
		{"filesystem without root", config.ArchiveConfig{Type: "filesystem"}, true},
		{"s3 without bucket", config.ArchiveConfig{Type: "s3"}, true},
		{"unknown", config.ArchiveConfig{Type: "tape"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewArchiveFromConfig(ctx, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewArchiveFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
