package normalisers

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps lowercase file extensions to extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]driven.Extractor
}

// NewRegistry creates a registry holding the given extractors.
// Later extractors win when extensions collide.
func NewRegistry(extractors ...driven.Extractor) *Registry {
	r := &Registry{extractors: make(map[string]driven.Extractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor for all of its extensions.
func (r *Registry) Register(e driven.Extractor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range e.Extensions() {
		r.extractors[strings.ToLower(ext)] = e
	}
}

// ForFile returns the extractor for the file's extension.
func (r *Registry) ForFile(name string) (driven.Extractor, error) {
	ext := strings.ToLower(filepath.Ext(name))

	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.extractors[ext]
	if !ok {
		return nil, fmt.Errorf("%w: no extractor for %q", domain.ErrUnsupportedType, name)
	}
	return e, nil
}
