package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the recognized project configuration file name.
const FileName = "kira.toml"

// Project is a parsed kira.toml, reduced to the two sections this loader
// recognizes: `[package]` and `[modules]`. Unknown sections are parsed
// (Doc keeps them) but ignored by every consumer.
type Project struct {
	Root        string // directory containing this kira.toml
	PackageName string // [package] name, "" if absent
	Modules     map[string]string // [modules] modname -> relative path, declaration order not significant
	ModuleOrder []string
}

// Load parses the kira.toml file at path.
func Load(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Parse(f)
	if err != nil {
		return nil, err
	}
	p := &Project{Root: filepath.Dir(path), Modules: make(map[string]string)}
	if pkg, ok := doc.Section("package"); ok {
		if name, ok := pkg.Get("name"); ok {
			p.PackageName = name
		}
	}
	if mods, ok := doc.Section("modules"); ok {
		for _, e := range mods.Entries {
			p.Modules[e.Key] = e.Value
			p.ModuleOrder = append(p.ModuleOrder, e.Key)
		}
	}
	return p, nil
}

// Discover walks up from startDir looking for a kira.toml, the way the
// loader establishes a project root before resolving any module path.
// The walk starts from startDir (made absolute); there is no
// configurable environment variable. Returns nil, nil if none is found
// up to the filesystem root.
func Discover(startDir string) (*Project, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return Load(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// ModulePath returns the relative path mapped to a submodule name within
// this project's [modules] section.
func (p *Project) ModulePath(name string) (string, bool) {
	rel, ok := p.Modules[name]
	return rel, ok
}

// String renders a human-readable summary, used by diagnostics that
// report which project root resolution used.
func (p *Project) String() string {
	return fmt.Sprintf("%s (package=%q, %d modules)", p.Root, p.PackageName, len(p.Modules))
}
