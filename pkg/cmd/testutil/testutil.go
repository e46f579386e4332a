package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/tsqlrunner/pkg/config"
	"github.com/pseudomuto/tsqlrunner/pkg/consts"
	"github.com/pseudomuto/tsqlrunner/pkg/project"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// ProjectFixture represents a scaffolded tsqlrunner project in a temp directory
type ProjectFixture struct {
	Dir     string
	Config  *config.Config
	Project *project.Project
	t       *testing.T
}

// TestProject creates an isolated temp directory with an initialized tsqlrunner project
func TestProject(t *testing.T) *ProjectFixture {
	t.Helper()

	tmpDir := t.TempDir()
	proj := project.New(project.ProjectParams{Dir: tmpDir})

	err := proj.Initialize(project.InitOptions{})
	require.NoError(t, err, "Failed to initialize test project")

	fixture := &ProjectFixture{
		Dir:     tmpDir,
		Project: proj,
		t:       t,
	}

	fixture.Config, err = config.LoadConfigFile(fixture.GetConfigPath())
	require.NoError(t, err, "Failed to load config file")

	return fixture
}

// WithConfig lets mutate adjust the configuration and writes it back to disk
func (p *ProjectFixture) WithConfig(mutate func(*config.Config)) *ProjectFixture {
	p.t.Helper()

	mutate(p.Config)

	data, err := yaml.Marshal(p.Config)
	require.NoError(p.t, err)
	require.NoError(p.t, os.WriteFile(p.GetConfigPath(), data, consts.ModeFile))

	return p
}

// WithFramework writes the server preparation and framework installation scripts
func (p *ProjectFixture) WithFramework(prepare, install string) *ProjectFixture {
	p.t.Helper()

	dir := filepath.Join(p.Dir, filepath.FromSlash(p.Config.Framework.Dir))
	p.writeFile(filepath.Join(dir, p.Config.Framework.Prepare), prepare)
	p.writeFile(filepath.Join(dir, p.Config.Framework.Install), install)

	return p
}

// WithTestFiles writes test definition scripts, keyed by path relative to the project root
func (p *ProjectFixture) WithTestFiles(files map[string]string) *ProjectFixture {
	p.t.Helper()

	for name, content := range files {
		p.writeFile(filepath.Join(p.Dir, filepath.FromSlash(name)), content)
	}

	return p
}

// GetConfigPath returns the path of tsqlrunner.yaml
func (p *ProjectFixture) GetConfigPath() string {
	return filepath.Join(p.Dir, consts.ConfigFile)
}

// GetTestsDir returns the scaffolded tests directory
func (p *ProjectFixture) GetTestsDir() string {
	return filepath.Join(p.Dir, "tests")
}

func (p *ProjectFixture) writeFile(path, content string) {
	p.t.Helper()

	require.NoError(p.t, os.MkdirAll(filepath.Dir(path), consts.ModeDir))
	require.NoError(p.t, os.WriteFile(path, []byte(content), consts.ModeFile))
}
