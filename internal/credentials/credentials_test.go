package credentials

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.age")
	store := NewStore(path)

	creds := &Credentials{User: "catalog", Password: "s3cret", Host: "db.internal", Port: 5432}
	if err := store.Save(creds, "open sesame"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load("open sesame")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *creds {
		t.Errorf("Load() = %+v, want %+v", loaded, creds)
	}
}

func TestLoadWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.age")
	store := NewStore(path)

	if err := store.Save(&Credentials{User: "catalog"}, "right"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Load("wrong"); err == nil {
		t.Error("Load() with wrong passphrase succeeded, want error")
	}
}

func TestFileIsEncrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.age")
	store := NewStore(path)

	if err := store.Save(&Credentials{User: "catalog", Password: "s3cret"}, "pw"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	if string(raw) == "" {
		t.Fatal("credentials file is empty")
	}
	for _, secret := range []string{"catalog", "s3cret"} {
		if bytes.Contains(raw, []byte(secret)) {
			t.Errorf("credentials file contains plaintext %q", secret)
		}
	}
}

func TestExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.age")
	store := NewStore(path)

	if store.Exists() {
		t.Error("Exists() = true before Save")
	}
	if err := store.Save(&Credentials{}, "pw"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !store.Exists() {
		t.Error("Exists() = false after Save")
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.age"))
	if _, err := store.Load("pw"); err == nil {
		t.Error("Load() on missing file succeeded, want error")
	}
}

func TestURL(t *testing.T) {
	creds := &Credentials{User: "u", Password: "p", Host: "h", Port: 5432}
	got := creds.URL("github")
	want := "postgres://u:p@h:5432/github"
	if got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}
