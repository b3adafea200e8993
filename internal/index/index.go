package index

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/buger/jsonparser"
	"github.com/wot-oss/fwreg/internal/model"
	"github.com/wot-oss/fwreg/internal/utils"
)

const indent = "  "

// Builder collects validated manifest documents into an Index.
// Documents are kept in the order they are added.
type Builder struct {
	now     func() time.Time
	seen    map[model.Key]string
	entries []json.RawMessage
}

// NewBuilder creates a Builder which stamps the index with the time returned by now. A nil now uses time.Now
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{
		now:  now,
		seen: make(map[model.Key]string),
	}
}

// CheckDuplicate returns a *model.DuplicateVersionError if a document with the same id and version
// has already been added
func (b *Builder) CheckDuplicate(doc *model.Document) error {
	key := doc.Key()
	if existing, ok := b.seen[key]; ok {
		return &model.DuplicateVersionError{Key: key, Source: doc.Source, ExistingSource: existing}
	}
	return nil
}

// Add appends the document to the index. The entry is the complete raw document with
// its "source" member set to the document's source
func (b *Builder) Add(doc *model.Document) error {
	if err := b.CheckDuplicate(doc); err != nil {
		return err
	}
	entry, err := entryOf(doc)
	if err != nil {
		return err
	}
	b.seen[doc.Key()] = doc.Source
	b.entries = append(b.entries, entry)
	return nil
}

func entryOf(doc *model.Document) (json.RawMessage, error) {
	source, err := json.Marshal(doc.Source)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, len(doc.Raw))
	copy(raw, doc.Raw)
	entry, err := jsonparser.Set(raw, source, "source")
	if err != nil {
		return nil, fmt.Errorf("could not add source to %s: %w", doc.Source, err)
	}
	if !json.Valid(entry) {
		return nil, fmt.Errorf("invalid JSON in %s", doc.Source)
	}
	return entry, nil
}

// Len returns the number of documents added so far
func (b *Builder) Len() int {
	return len(b.entries)
}

// Index returns the index of all documents added so far
func (b *Builder) Index() *model.Index {
	packages := make([]json.RawMessage, len(b.entries))
	copy(packages, b.entries)
	return &model.Index{
		GeneratedAt: model.FormatTimestamp(b.now()),
		Count:       len(packages),
		Packages:    packages,
	}
}

// Build creates an index of docs in the given order
func Build(docs []*model.Document, now func() time.Time) (*model.Index, error) {
	b := NewBuilder(now)
	for _, d := range docs {
		if err := b.Add(d); err != nil {
			return nil, err
		}
	}
	return b.Index(), nil
}

// Encode serializes the index with two-space indentation and a trailing newline
func Encode(idx *model.Index) ([]byte, error) {
	return utils.EncodeJSONIndent(idx, indent)
}

// Write replaces the file at path with the serialized index. Concurrent writers of the same file
// are excluded with a lock file next to it
func Write(ctx context.Context, path string, idx *model.Index) error {
	data, err := Encode(idx)
	if err != nil {
		return err
	}
	unlock, err := utils.LockOutput(ctx, path)
	defer unlock()
	if err != nil {
		return err
	}
	if err := utils.AtomicWriteFile(path, data, utils.DefaultFilePermissions); err != nil {
		return fmt.Errorf("could not write index %s: %w", path, err)
	}
	utils.GetLogger(ctx, "index").Info("wrote index", "file", path, "count", idx.Count)
	return nil
}

// Read reads an index file written by Write
func Read(path string) (*model.Index, error) {
	_, raw, err := utils.ReadRequiredFile(path)
	if err != nil {
		return nil, err
	}
	var idx model.Index
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("invalid index file %s: %w", path, err)
	}
	return &idx, nil
}
