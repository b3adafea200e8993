package model

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the layout of Index.GeneratedAt
const TimestampLayout = "2006-01-02T15:04:05Z"

// Index is the consolidated collection of all validated manifests.
// Each package is the complete manifest document with an added "source" member.
type Index struct {
	GeneratedAt string            `json:"generated_at"`
	Count       int               `json:"count"`
	Packages    []json.RawMessage `json:"packages"`
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
