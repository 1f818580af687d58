package portability

import (
	"sync"
)

// Registry manages importers for different formats.
type Registry struct {
	mu        sync.RWMutex
	importers map[Format]Importer
}

// defaultRegistry is the global registry instance.
var defaultRegistry = &Registry{
	importers: make(map[Format]Importer),
}

// RegisterImporter adds an importer to the default registry.
func RegisterImporter(importer Importer) {
	defaultRegistry.RegisterImporter(importer)
}

// GetImporter returns the importer for a format from the default registry.
func GetImporter(format Format) Importer {
	return defaultRegistry.GetImporter(format)
}

// ListImporters returns all registered importers from the default registry.
func ListImporters() []Importer {
	return defaultRegistry.ListImporters()
}

// RegisterImporter adds an importer to the registry.
func (r *Registry) RegisterImporter(importer Importer) {
	if importer == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.importers[importer.Format()] = importer
}

// GetImporter returns the importer for a format.
func (r *Registry) GetImporter(format Format) Importer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.importers[format]
}

// ListImporters returns all registered importers.
func (r *Registry) ListImporters() []Importer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Importer, 0, len(r.importers))
	for _, imp := range r.importers {
		result = append(result, imp)
	}
	return result
}

// HasImporter checks if an importer is registered for the format.
func (r *Registry) HasImporter(format Format) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.importers[format]
	return ok
}
