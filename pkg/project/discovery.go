package project

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// TestScripts returns the test definition scripts of the project, as paths
// within FS, in lexicographic order.
//
// The tests directory is walked recursively and every file whose base name
// matches the configured pattern (case-insensitively) is included. Hidden
// directories and the framework folder are skipped.
func (p *Project) TestScripts() ([]string, error) {
	cfg := p.Config()

	root := path.Clean(filepath.ToSlash(cfg.Tests.Dir))
	framework := path.Clean(filepath.ToSlash(cfg.Framework.Dir))
	pattern := strings.ToLower(cfg.Tests.Pattern)

	if _, err := path.Match(pattern, ""); err != nil {
		return nil, errors.Wrapf(err, "invalid test pattern: %s", cfg.Tests.Pattern)
	}

	var scripts []string
	err := fs.WalkDir(p.fsys, root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if name == root {
				return nil
			}

			if strings.HasPrefix(d.Name(), ".") || name == framework {
				return fs.SkipDir
			}

			return nil
		}

		// pattern was validated above
		if ok, _ := path.Match(pattern, strings.ToLower(d.Name())); ok {
			scripts = append(scripts, name)
		}

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to discover test scripts in %s", root)
	}

	sort.Strings(scripts)
	return scripts, nil
}
