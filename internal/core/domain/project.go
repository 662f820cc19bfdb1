package domain

import "go.trai.ch/zerr"

// Project is a loaded configuration: the project root and the ordered targets to build.
type Project struct {
	// Root is the absolute directory that relative entry points and output dirs resolve against.
	Root string
	// ConfigPath is the configuration file the project was loaded from, empty for built-in defaults.
	ConfigPath string
	// Targets are the build targets in declaration order.
	Targets []Target
}

// TargetNames returns the names of the project's targets in order.
func (p *Project) TargetNames() []string {
	names := make([]string, len(p.Targets))
	for i := range p.Targets {
		names[i] = p.Targets[i].Name
	}
	return names
}

// Select returns the targets with the given names, keeping configuration order.
// An empty selection returns every target.
func (p *Project) Select(names []string) ([]Target, error) {
	if len(names) == 0 {
		return p.Targets, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	selected := make([]Target, 0, len(names))
	for i := range p.Targets {
		if wanted[p.Targets[i].Name] {
			selected = append(selected, p.Targets[i])
			delete(wanted, p.Targets[i].Name)
		}
	}

	for _, n := range names {
		if wanted[n] {
			return nil, zerr.With(ErrTargetNotFound, "target", n)
		}
	}
	return selected, nil
}
