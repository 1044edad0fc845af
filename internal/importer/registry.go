package importer

import "sort"

// Registry holds the importable kinds by code.
type Registry struct {
	importers map[string]Importer
}

// NewRegistry registers importers by their Name. Later duplicates win.
func NewRegistry(importers ...Importer) *Registry {
	r := &Registry{importers: make(map[string]Importer, len(importers))}
	for _, imp := range importers {
		r.importers[imp.Name()] = imp
	}
	return r
}

// DefaultRegistry contains every master-data kind of the clinic.
func DefaultRegistry() *Registry {
	return NewRegistry(
		DiagnosisKind(),
		DepartmentKind(),
		LabTestKind(),
		InventoryKind(),
	)
}

func (r *Registry) Get(name string) (Importer, bool) {
	imp, ok := r.importers[name]
	return imp, ok
}

// Names returns the registered kind codes in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.importers))
	for name := range r.importers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
