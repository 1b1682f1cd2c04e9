package shard

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestPath(t *testing.T) {
	tests := []struct {
		name string
		root string
		id   int64
		want string
	}{
		{"documented example", "/data", 7182480, "/data/07/18/24/80"},
		{"zero", "/data", 0, "/data/00/00/00/00"},
		{"one", "/data", 1, "/data/00/00/00/01"},
		{"max id", "/data", 99_999_999, "/data/99/99/99/99"},
		{"relative root", "repos", 1563_99, "repos/00/15/63/99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Path(tt.root, tt.id)
			if err != nil {
				t.Fatalf("Path() error = %v", err)
			}
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("Path() = %q, want %q", got, tt.want)
			}
		})
	}
}

// The four segments, concatenated, must always reproduce the zero-padded
// decimal form of the id.
func TestPath_SegmentsReconstructID(t *testing.T) {
	for _, id := range []int64{0, 1, 62, 7182480, 12345678, MaxID} {
		p, err := Path("", id)
		if err != nil {
			t.Fatalf("Path(%d) error = %v", id, err)
		}
		joined := strings.ReplaceAll(p, string(filepath.Separator), "")
		if len(joined) != 8 {
			t.Fatalf("Path(%d) = %q: %d digits, want 8", id, p, len(joined))
		}
		want := []byte("00000000")
		for i, digits := len(want)-1, id; digits > 0; i, digits = i-1, digits/10 {
			want[i] = byte('0' + digits%10)
		}
		if joined != string(want) {
			t.Errorf("Path(%d) digits = %q, want %q", id, joined, want)
		}
	}
}

func TestPath_OutOfRange(t *testing.T) {
	for _, id := range []int64{-1, MaxID + 1, 1_000_000_000} {
		if _, err := Path("/data", id); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Path(%d) error = %v, want ErrOutOfRange", id, err)
		}
	}
}

func TestCacheRoot(t *testing.T) {
	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"no trailing separator", "/data/repos", "/data/repos.cache"},
		{"trailing separator stripped", "/data/repos/", "/data/repos.cache"},
		{"relative dir", "repos", "repos.cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.FromSlash(tt.dir)
			if got := CacheRoot(dir); got != filepath.FromSlash(tt.want) {
				t.Errorf("CacheRoot(%q) = %q, want %q", dir, got, tt.want)
			}
		})
	}
}
