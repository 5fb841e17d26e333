package seedfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

const sampleSeed = `secrets:
  - name: prod-db-cert
    owner_email: ops@example.com
    expiry_date: 2026-09-30
    notes: rotate via vault
  - name: api-token
    owner_email: dev@example.com
    expiry_date: 2026-10-15
  - name: ""
    owner_email: nobody@example.com
    expiry_date: 2026-10-15
  - name: broken-date
    owner_email: ops@example.com
    expiry_date: September 30th
`

func TestLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.yaml")
	if err := os.WriteFile(path, []byte(sampleSeed), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	f, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(f.Secrets) != 4 {
		t.Errorf("parsed %d entries, want 4", len(f.Secrets))
	}
}

func TestLoader_MissingFile(t *testing.T) {
	if _, err := NewLoader("/does/not/exist.yaml").Load(); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMapper_MapSecrets(t *testing.T) {
	var f File
	if err := yaml.Unmarshal([]byte(sampleSeed), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	secrets, err := NewMapper().MapSecrets(f)
	if err != nil {
		t.Fatalf("MapSecrets failed: %v", err)
	}

	// Empty name and unparseable date are dropped.
	if len(secrets) != 2 {
		t.Fatalf("mapped %d secrets, want 2", len(secrets))
	}

	first := secrets[0]
	if first.ID == "" {
		t.Error("mapped secret has no ID")
	}
	if first.Name != "prod-db-cert" || first.OwnerEmail != "ops@example.com" {
		t.Errorf("unexpected mapping: %+v", first)
	}
	want := time.Date(2026, time.September, 30, 0, 0, 0, 0, time.UTC)
	if !first.ExpiryDate.Equal(want) {
		t.Errorf("ExpiryDate = %v, want %v", first.ExpiryDate, want)
	}
	if !first.Active {
		t.Error("seeded secrets must start active")
	}
	if first.LastNotifiedThreshold != 0 {
		t.Error("seeded secrets must start never-notified")
	}

	// IDs are unique per entry.
	if secrets[0].ID == secrets[1].ID {
		t.Error("mapped secrets share an ID")
	}
}

func TestMapper_EmptySeed(t *testing.T) {
	if _, err := NewMapper().MapSecrets(File{}); err == nil {
		t.Error("expected error for empty seed file")
	}
}

func TestFingerprint(t *testing.T) {
	if Fingerprint("Ops@Example.com ", "Prod-DB-Cert") != Fingerprint("ops@example.com", "prod-db-cert") {
		t.Error("fingerprint should be case and whitespace insensitive")
	}
	if Fingerprint("a@b", "x") == Fingerprint("a@b", "y") {
		t.Error("different names must not collide")
	}
}
