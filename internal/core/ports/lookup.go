// internal/core/ports/lookup.go
package ports

import (
	"context"

	"github.com/pklemenc/shelfsync/internal/core/domain"
)

// SourceUnknown is the provenance tag of a lookup that produced no usable
// suggestion. Callers must treat zero confidence or this source as "no
// result".
const SourceUnknown = "unknown"

// Suggestion is a best-effort product descriptor returned by the external
// recognition collaborator.
type Suggestion struct {
	Name       string              `json:"name"`
	Category   domain.ItemCategory `json:"category"`
	Unit       string              `json:"unit"`
	Confidence float64             `json:"confidence"`
	Source     string              `json:"source"`
}

// Usable reports whether the suggestion carries any usable content.
func (s *Suggestion) Usable() bool {
	return s != nil && s.Confidence > 0 && s.Source != SourceUnknown
}

// LookupService resolves barcodes or image payloads to product suggestions.
// A not-found result is not an error: implementations return an unknown
// suggestion instead. Calls are bounded by a per-call timeout.
type LookupService interface {
	Barcode(ctx context.Context, code string) (*Suggestion, error)
	Image(ctx context.Context, payload []byte) (*Suggestion, error)
}
