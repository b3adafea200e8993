package testutils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// ManifestSchema is a manifest schema as used by firmware registries, for use in tests
const ManifestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "version", "release", "boards", "artifacts"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "version": {"type": "string", "minLength": 1},
    "channel": {"enum": ["stable", "beta"]},
    "release": {
      "type": "object",
      "required": ["date"],
      "properties": {"date": {"type": "string"}}
    },
    "boards": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["brand", "model"],
        "properties": {"brand": {"type": "string"}, "model": {"type": "string"}}
      }
    },
    "mcu": {"type": "array", "items": {"type": "string"}},
    "regions": {"type": "array", "items": {"type": "string"}},
    "features": {"type": "array", "items": {"type": "string"}},
    "scenes": {"type": "array", "items": {"type": "string"}},
    "artifacts": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "url": {"type": "string"},
          "sha256": {"type": "string", "pattern": "^[0-9a-fA-F]{64}$"},
          "flash_url": {"type": "string"}
        }
      }
    }
  }
}`

// ManifestBuilder builds manifest documents for tests
type ManifestBuilder struct {
	m map[string]any
}

func NewManifest(id, version, date string) *ManifestBuilder {
	return &ManifestBuilder{m: map[string]any{
		"id":        id,
		"version":   version,
		"release":   map[string]any{"date": date},
		"boards":    []any{map[string]any{"brand": "Acme", "model": "R1"}},
		"artifacts": []any{},
	}}
}

func (b *ManifestBuilder) With(key string, value any) *ManifestBuilder {
	b.m[key] = value
	return b
}

func (b *ManifestBuilder) WithBoard(brand, model string) *ManifestBuilder {
	b.m["boards"] = append(b.m["boards"].([]any), map[string]any{"brand": brand, "model": model})
	return b
}

// WithArtifact adds an artifact. Empty arguments are omitted from the artifact
func (b *ManifestBuilder) WithArtifact(url, sha256, flashUrl string) *ManifestBuilder {
	a := map[string]any{}
	if url != "" {
		a["url"] = url
	}
	if sha256 != "" {
		a["sha256"] = sha256
	}
	if flashUrl != "" {
		a["flash_url"] = flashUrl
	}
	b.m["artifacts"] = append(b.m["artifacts"].([]any), a)
	return b
}

func (b *ManifestBuilder) JSON() []byte {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b.m); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// WriteFile writes content to root/rel, creating directories as needed
func WriteFile(t testing.TB, root, rel string, content []byte) string {
	t.Helper()
	name := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(name), 0775); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, content, 0660); err != nil {
		t.Fatal(err)
	}
	return name
}

// NewRegistry creates a registry root in a temporary directory, containing the test manifest schema
// and the given manifests, keyed by their path relative to the packages directory
func NewRegistry(t testing.TB, manifests map[string][]byte) string {
	t.Helper()
	root := t.TempDir()
	WriteFile(t, root, "schemas/manifest.schema.json", []byte(ManifestSchema))
	for rel, content := range manifests {
		WriteFile(t, root, "packages/"+rel, content)
	}
	return root
}
