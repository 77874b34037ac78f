package tzdbcache

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingManifestReturnsEmpty(t *testing.T) {
	m, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if m.Latest.Version != "" {
		t.Errorf("got Latest.Version %q, want empty", m.Latest.Version)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := &Manifest{}
	m.Record(Entry{Version: "2024a", ETag: `"abc123"`, FetchedAt: time.Unix(0, 0).UTC(), ArchiveDir: filepath.Join(dir, "2024a")}, 5)

	if err := m.Save(dir); err != nil {
		t.Fatal(err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Latest.Version != "2024a" {
		t.Errorf("got version %q, want 2024a", got.Latest.Version)
	}
	if got.Latest.ETag != `"abc123"` {
		t.Errorf("got etag %q, want \"abc123\"", got.Latest.ETag)
	}
}

func TestHasETag(t *testing.T) {
	m := &Manifest{Latest: Entry{ETag: `"xyz"`}}
	if !m.HasETag(`"xyz"`) {
		t.Error("expected HasETag to match the recorded etag")
	}
	if m.HasETag(`"other"`) {
		t.Error("expected HasETag to reject a different etag")
	}
	if m.HasETag("") {
		t.Error("expected HasETag to reject an empty etag")
	}
}

func TestRecord_CapsHistory(t *testing.T) {
	m := &Manifest{}
	for i := 0; i < 5; i++ {
		m.Record(Entry{Version: string(rune('a' + i))}, 2)
	}
	if len(m.History) != 2 {
		t.Fatalf("got %d history entries, want 2 (capped)", len(m.History))
	}
	if m.Latest.Version != string(rune('a'+4)) {
		t.Errorf("got latest version %q, want %q", m.Latest.Version, string(rune('a'+4)))
	}
}
