package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/kira-lang/kira/internal/config"
)

// resolvePath implements a four-step, first-hit-wins path resolution
// algorithm. It returns the first candidate file that exists on disk, or
// a ModuleNotFound-shaped error listing every candidate tried.
func (s *Session) resolvePath(segments []string) (string, []string, error) {
	var tried []string

	if s.Project != nil && len(segments) > 0 {
		if target, ok := s.Project.ModulePath(segments[0]); ok {
			targetAbs := filepath.Join(s.Project.Root, target)
			if isDirLike(target, targetAbs) {
				pkgCfg, err := s.loadPackageConfig(segments[0], targetAbs)
				if err == nil && pkgCfg != nil {
					rest := segments[1:]
					if len(rest) == 1 {
						if sub, ok := pkgCfg.ModulePath(rest[0]); ok {
							cand := filepath.Join(targetAbs, sub)
							tried = append(tried, cand)
							if fileExists(cand) {
								return cand, tried, nil
							}
						}
					}
					if len(rest) > 0 {
						cand := filepath.Join(targetAbs, strings.Join(rest, string(filepath.Separator))+".ki")
						tried = append(tried, cand)
						if fileExists(cand) {
							return cand, tried, nil
						}
					} else {
						cand := filepath.Join(targetAbs, "mod.ki")
						tried = append(tried, cand)
						if fileExists(cand) {
							return cand, tried, nil
						}
					}
				}
			}
		}
	}

	if s.Project != nil && len(segments) > 0 {
		if target, ok := s.Project.ModulePath(segments[0]); ok {
			targetAbs := filepath.Join(s.Project.Root, target)
			cand := targetAbs
			if !strings.HasSuffix(cand, ".ki") {
				cand += ".ki"
			}
			tried = append(tried, cand)
			if fileExists(cand) {
				return cand, tried, nil
			}
			if isDirLike(target, targetAbs) {
				cand2 := filepath.Join(targetAbs, "mod.ki")
				tried = append(tried, cand2)
				if fileExists(cand2) {
					return cand2, tried, nil
				}
			}
		}
	}

	for _, dir := range s.SearchDirs {
		rel := strings.Join(segments, string(filepath.Separator)) + ".ki"
		cand := filepath.Join(dir, rel)
		tried = append(tried, cand)
		if fileExists(cand) {
			return cand, tried, nil
		}
		cand2 := filepath.Join(dir, strings.Join(segments, string(filepath.Separator)), "mod.ki")
		tried = append(tried, cand2)
		if fileExists(cand2) {
			return cand2, tried, nil
		}
	}

	root := s.WorkDir
	if s.Project != nil {
		root = s.Project.Root
	}
	cand := filepath.Join(root, strings.Join(segments, string(filepath.Separator))+".ki")
	tried = append(tried, cand)
	if fileExists(cand) {
		return cand, tried, nil
	}

	return "", tried, os.ErrNotExist
}

// loadPackageConfig loads and caches (once per package name) the nested
// kira.toml that lives inside a configured package's own directory,
// verifying its `[package] name` matches the segment that selected it.
func (s *Session) loadPackageConfig(name, dirAbs string) (*config.Project, error) {
	if cfg, ok := s.pkgConfigs[name]; ok {
		return cfg, nil
	}
	candidate := filepath.Join(dirAbs, config.FileName)
	if !fileExists(candidate) {
		return nil, os.ErrNotExist
	}
	cfg, err := config.Load(candidate)
	if err != nil {
		return nil, err
	}
	if cfg.PackageName != name {
		return nil, os.ErrNotExist
	}
	s.pkgConfigs[name] = cfg
	return cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// isDirLike reports whether a [modules] mapping's raw string or its
// resolved absolute path denotes a directory: either it ends in a path
// separator (as written in kira.toml, e.g. "pkg/") or it exists on disk
// as a directory.
func isDirLike(raw, abs string) bool {
	if strings.HasSuffix(raw, "/") || strings.HasSuffix(raw, string(filepath.Separator)) {
		return true
	}
	info, err := os.Stat(abs)
	return err == nil && info.IsDir()
}
