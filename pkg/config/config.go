// Package config holds quickopen's settings and its small persisted state.
//
// Settings are grouped into Sections managed by a Manager. The same JSON
// FileStore also carries machine-owned sections (the overlay position and the
// last release check) that other packages read and write directly.
package config

// Settings bundles the manager with typed access to the built-in sections.
type Settings struct {
	*Manager

	File         *FileStore
	Lookup       *LookupSection
	UpdateChecks *UpdateChecksSection
}

// Open loads the store at path (DefaultPath when empty) and registers the
// built-in sections.
func Open(path string) (*Settings, error) {
	store, err := NewFileStore(path)
	if err != nil {
		return nil, err
	}

	settings := &Settings{
		Manager:      NewManager(store),
		File:         store,
		Lookup:       NewLookupSection(),
		UpdateChecks: NewUpdateChecksSection(),
	}

	for _, section := range []Section{settings.Lookup, settings.UpdateChecks} {
		if err := settings.RegisterSection(section); err != nil {
			return nil, err
		}
	}

	if err := settings.LoadAll(); err != nil {
		return nil, err
	}
	return settings, nil
}
