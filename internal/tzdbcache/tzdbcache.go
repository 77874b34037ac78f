// Package tzdbcache keeps a small on-disk manifest of downloaded tzdata
// releases so the fetch subcommand can skip a download when the server's
// ETag hasn't changed.
package tzdbcache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Entry records one previously downloaded release.
type Entry struct {
	Version    string    `yaml:"version"`
	ETag       string    `yaml:"etag"`
	FetchedAt  time.Time `yaml:"fetched_at"`
	ArchiveDir string    `yaml:"archive_dir"`
}

// Manifest is the cache's on-disk contents: the most recently fetched
// release plus enough history to answer "have I already seen this ETag".
type Manifest struct {
	Latest  Entry   `yaml:"latest"`
	History []Entry `yaml:"history"`
}

const manifestFilename = "manifest.yaml"

// Load reads the manifest from dir. A missing manifest file is not an
// error: it returns a zero-value Manifest, matching a freshly initialized
// cache directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// Save writes the manifest to dir, creating the directory if necessary.
func (m *Manifest) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(dir, manifestFilename)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// HasETag reports whether etag matches the most recently recorded fetch,
// meaning the caller can skip downloading the release body again.
func (m *Manifest) HasETag(etag string) bool {
	return etag != "" && m.Latest.ETag == etag
}

// Record prepends the current Latest entry (if any) to History and installs
// e as the new Latest, keeping at most maxHistory prior entries, newest first.
func (m *Manifest) Record(e Entry, maxHistory int) {
	if m.Latest.Version != "" {
		m.History = append([]Entry{m.Latest}, m.History...)
	}
	if len(m.History) > maxHistory {
		m.History = m.History[:maxHistory]
	}
	m.Latest = e
}
