package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/tsqlrunner/pkg/project"
)

// Workspace tracks the project directory selected with --dir and loads the
// project on first use.
type Workspace struct {
	dir  string
	proj *project.Project
}

func NewWorkspace() *Workspace {
	return &Workspace{dir: "."}
}

// SetDir points the workspace at dir, which must be an existing directory.
func (w *Workspace) SetDir(dir string) error {
	if dir == "" {
		dir = "."
	}

	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(err, "failed to stat project directory: %s", dir)
	}

	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", dir)
	}

	w.dir = dir
	w.proj = nil
	return nil
}

func (w *Workspace) Dir() string {
	return w.dir
}

// Project loads the project in Dir. A directory without tsqlrunner.yaml is a
// project using the defaults.
func (w *Workspace) Project() (*project.Project, error) {
	if w.proj != nil {
		return w.proj, nil
	}

	proj, err := project.Load(project.ProjectParams{Dir: w.dir})
	if err != nil {
		return nil, err
	}

	w.proj = proj
	return proj, nil
}
