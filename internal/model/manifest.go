package model

import (
	"strings"
)

// Manifest describes one version of one firmware package. It contains only the fields the registry
// builder acts upon; the complete document is kept in Document.Raw.
type Manifest struct {
	ID        string     `json:"id"`
	Version   string     `json:"version"`
	Release   Release    `json:"release"`
	Boards    []Board    `json:"boards,omitempty"`
	MCU       []string   `json:"mcu,omitempty"`
	Regions   []string   `json:"regions,omitempty"`
	Features  []string   `json:"features,omitempty"`
	Scenes    []string   `json:"scenes,omitempty"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

type Release struct {
	Date string `json:"date"`
}

type Board struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
}

// Artifact is a downloadable binary referenced by a manifest.
// URL and SHA256 are optional independently of each other.
type Artifact struct {
	URL      string `json:"url,omitempty"`
	SHA256   string `json:"sha256,omitempty"`
	FlashURL string `json:"flash_url,omitempty"`
}

// RemoteURL returns the artifact's remote location and whether one is declared
func (a Artifact) RemoteURL() (string, bool) {
	u := strings.TrimSpace(a.URL)
	return u, u != ""
}

// ExpectedDigest returns the declared SHA-256 digest in lower case and whether one is declared
func (a Artifact) ExpectedDigest() (string, bool) {
	d := strings.ToLower(strings.TrimSpace(a.SHA256))
	return d, d != ""
}

// Key identifies a manifest across the whole corpus
type Key struct {
	ID      string
	Version string
}

func (m *Manifest) Key() Key {
	return Key{ID: m.ID, Version: m.Version}
}

func (k Key) String() string {
	return "(" + k.ID + ", " + k.Version + ")"
}

// Document is a manifest file as loaded from disk
type Document struct {
	// Path is the absolute file name
	Path string
	// Source is the path relative to the registry root, with forward slashes
	Source string
	// Raw is the file content without byte-order mark
	Raw []byte
	// Parsed is the generic JSON value of Raw, used for schema validation
	Parsed any
	Manifest
}
