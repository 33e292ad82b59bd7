// Package journal defines the dated journal record and the catalog
// manifest exchanged between clients and the server.
package journal

import (
	"fmt"
	"time"
)

// DateLayout is the canonical form of an entry date.
const DateLayout = "2006-01-02"

// Entry is the unit of storage and synchronization: one record per
// calendar date. The date never changes once the entry exists. A deleted
// entry is kept as a tombstone so the deletion itself can replicate to
// clients that still hold the old copy.
type Entry struct {
	Date       string    `json:"date"`
	Content    string    `json:"content"`
	ModifiedAt time.Time `json:"modified_at"`
	Deleted    bool      `json:"deleted"`
}

// CatalogItem describes one catalog line: when the record last changed and
// whether it is a tombstone.
type CatalogItem struct {
	ModifiedAt time.Time `json:"modified_at"`
	Deleted    bool      `json:"deleted"`
}

// Catalog maps each known date to its last-modified metadata. It lets a
// client decide what to pull without transferring entry bodies. Tombstones
// appear with their own ModifiedAt so "deleted after my copy" can be told
// apart from "never existed".
type Catalog map[string]CatalogItem

// ParseDate validates s against DateLayout and returns the canonical form.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid entry date %q: %w", s, err)
	}
	return t.Format(DateLayout), nil
}
