package calendar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "calendar_token.json")
	store := NewTokenStore(path)

	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Save(token); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.AccessToken != token.AccessToken || loaded.RefreshToken != token.RefreshToken {
		t.Fatalf("loaded token differs: %+v", loaded)
	}
	if !loaded.Expiry.Equal(token.Expiry) {
		t.Fatalf("expiry differs: %v vs %v", loaded.Expiry, token.Expiry)
	}
}

func TestTokenStoreLoadMissing(t *testing.T) {
	store := NewTokenStore(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := store.Load(); err == nil {
		t.Fatal("expected error for missing token file")
	}
}

func TestTokenStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewTokenStore(path)
	if _, err := store.Load(); err == nil {
		t.Fatal("expected error for corrupt token file")
	}
}
