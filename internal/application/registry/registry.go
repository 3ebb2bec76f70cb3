package registry

import (
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/costlocker/reports/internal/domain/entity"
	"github.com/costlocker/reports/internal/domain/repository"
	"github.com/costlocker/reports/internal/shared/types"
)

// Format pairs an output format name with the transformer that renders it.
type Format struct {
	Name    string
	Factory repository.TransformerFactory
}

// Definition describes one report type offered by the application.
type Definition struct {
	ID           string
	Title        string
	DateRange    string
	CustomConfig []entity.CustomConfigEntry
	PreviewImage string
	Extractor    repository.ExtractorFactory
	// Formats are ordered, the first one is the default.
	Formats []Format
	// SupportedLoaders limits the loaders by name. Empty means all loaders.
	SupportedLoaders []string
}

// DefaultFormat returns the name of the first registered format.
func (d Definition) DefaultFormat() string {
	if len(d.Formats) == 0 {
		return ""
	}
	return d.Formats[0].Name
}

// FormatNames lists the registered format names in order.
func (d Definition) FormatNames() []string {
	return lo.Map(d.Formats, func(f Format, _ int) string { return f.Name })
}

func (d Definition) supports(loader string) bool {
	return len(d.SupportedLoaders) == 0 || lo.Contains(d.SupportedLoaders, loader)
}

// ETL is the resolved extractor, transformer and loader set of one run.
type ETL struct {
	Extractor   repository.ExtractorFactory
	Format      string
	Transformer repository.TransformerFactory
	Extension   string
	Loaders     []repository.Loader
}

// Registry is the table of report definitions and the global loader set.
// It is populated at startup and read-only afterwards.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]Definition
	order       []string
	loaders     []repository.Loader
}

// New creates a registry with the given loaders.
func New(loaders ...repository.Loader) *Registry {
	return &Registry{
		definitions: make(map[string]Definition),
		loaders:     loaders,
	}
}

// Register adds a report definition.
func (r *Registry) Register(def Definition) error {
	if def.ID == "" {
		return fmt.Errorf("report definition without id")
	}
	if def.Extractor == nil {
		return fmt.Errorf("report %q has no extractor", def.ID)
	}
	if len(def.Formats) == 0 {
		return fmt.Errorf("report %q has no formats", def.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.definitions[def.ID]; ok {
		return fmt.Errorf("%w: %s", types.ErrDuplicateReport, def.ID)
	}
	r.definitions[def.ID] = def
	r.order = append(r.order, def.ID)
	return nil
}

// MustRegister registers definitions and panics on the first failure.
func (r *Registry) MustRegister(defs ...Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

// Definition returns the definition registered under id.
func (r *Registry) Definition(id string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.definitions[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", types.ErrUnknownReport, id)
	}
	return def, nil
}

// Definitions returns all definitions in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.order, func(id string, _ int) Definition { return r.definitions[id] })
}

// Loaders returns the global loader set.
func (r *Registry) Loaders() []repository.Loader {
	return r.loaders
}

// GetETL resolves the extractor, the transformer for format (or the default
// format when empty) and the loaders activated by export.
func (r *Registry) GetETL(reportType, format string, export entity.ExportSettings) (ETL, error) {
	def, err := r.Definition(reportType)
	if err != nil {
		return ETL{}, err
	}

	if format == "" {
		format = def.DefaultFormat()
	}
	selected, ok := lo.Find(def.Formats, func(f Format) bool { return f.Name == format })
	if !ok {
		return ETL{}, fmt.Errorf("%w: %s does not support %q", types.ErrUnknownFormat, reportType, format)
	}

	return ETL{
		Extractor:   def.Extractor,
		Format:      selected.Name,
		Transformer: selected.Factory,
		Extension:   selected.Factory().Extension(),
		Loaders: lo.Filter(r.loaders, func(l repository.Loader, _ int) bool {
			return def.supports(l.Name()) && l.Enabled(export)
		}),
	}, nil
}
