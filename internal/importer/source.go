// Package importer converts room content from other formats into overlay
// records that the castle loads as geometry overrides.
package importer

import "github.com/cory-johannsen/castle/internal/game/overlay"

// Source loads room records from a format-specific file.
//
// Precondition: path names a file in the source's format.
// Postcondition: Returns at least one record, or a non-nil error.
type Source interface {
	Load(path string) ([]overlay.Record, error)
}
