package project

import (
	_ "embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"testing/fstest"

	"github.com/pkg/errors"
	"github.com/pseudomuto/tsqlrunner/pkg/config"
	"github.com/pseudomuto/tsqlrunner/pkg/consts"
	"gopkg.in/yaml.v3"
)

var (
	//go:embed embed/tsqlrunner.yaml
	defaultConfig []byte

	//go:embed embed/ExampleTests.sql
	defaultExampleTests []byte

	image = fstest.MapFS{
		consts.ConfigFile:          {Data: defaultConfig},
		"tests":                    {Mode: os.ModeDir | consts.ModeDir},
		"tests/ExampleTests.sql":   {Data: defaultExampleTests},
		consts.DefaultFrameworkDir: {Mode: os.ModeDir | consts.ModeDir},
	}
)

type (
	// InitOptions contains options for project initialization
	InitOptions struct {
		// ConnectionEnv overrides the environment variable holding the connection string.
		ConnectionEnv string

		// Policy overrides the connection policy written to the configuration.
		Policy config.ConnectionPolicy
	}

	// ProjectParams locate a project.
	ProjectParams struct {
		// Dir is the project root. Defaults to the working directory.
		Dir string

		// FS is the file system scripts are read from. Defaults to os.DirFS(Dir).
		FS fs.FS
	}

	// Project is a directory holding the vendored tSQLt framework, test
	// definition scripts and an optional tsqlrunner.yaml.
	Project struct {
		root   string
		fsys   fs.FS
		config *config.Config
	}
)

// New creates a Project rooted at params.Dir. The configuration is not read
// until Load or Initialize is called; until then defaults apply.
//
// Example:
//
//	proj := project.New(project.ProjectParams{Dir: "/path/to/db"})
//	scripts, err := proj.TestScripts()
//	if err != nil {
//		log.Fatal(err)
//	}
func New(params ProjectParams) *Project {
	root := params.Dir
	if root == "" {
		root = "."
	}

	fsys := params.FS
	if fsys == nil {
		fsys = os.DirFS(root)
	}

	return &Project{root: root, fsys: fsys}
}

// Load creates a Project and reads its tsqlrunner.yaml. A project without a
// configuration file uses the defaults.
func Load(params ProjectParams) (*Project, error) {
	p := New(params)

	f, err := p.fsys.Open(consts.ConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		p.config = config.Default()
		return p, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", consts.ConfigFile)
	}
	defer func() { _ = f.Close() }()

	cfg, err := config.LoadConfig(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", consts.ConfigFile)
	}

	p.config = cfg
	return p, nil
}

// Root returns the project directory.
func (p *Project) Root() string {
	return p.root
}

// FS returns the file system scripts are read from.
func (p *Project) FS() fs.FS {
	return p.fsys
}

// Config returns the loaded configuration, or the defaults when none was loaded.
func (p *Project) Config() *config.Config {
	if p.config == nil {
		p.config = config.Default()
	}

	return p.config
}

// PrepareScript returns the path of the server preparation script within FS.
func (p *Project) PrepareScript() string {
	cfg := p.Config()
	return path.Join(filepath.ToSlash(cfg.Framework.Dir), cfg.Framework.Prepare)
}

// FrameworkScript returns the path of the tSQLt installation script within FS.
func (p *Project) FrameworkScript() string {
	cfg := p.Config()
	return path.Join(filepath.ToSlash(cfg.Framework.Dir), cfg.Framework.Install)
}

// Initialize scaffolds the project directory and loads its configuration.
// This method is idempotent: only missing files and directories are created,
// existing content is preserved.
//
// The scaffold contains tsqlrunner.yaml, tests/ExampleTests.sql and an empty
// framework folder. The tSQLt distribution itself must be downloaded and
// extracted into that folder.
//
// Example:
//
//	proj := project.New(project.ProjectParams{Dir: "/path/to/db"})
//	if err := proj.Initialize(project.InitOptions{Policy: config.PolicyFallback}); err != nil {
//		log.Fatal("Failed to initialize project:", err)
//	}
func (p *Project) Initialize(options InitOptions) error {
	if err := p.ensureDirectory(); err != nil {
		return err
	}

	configPath := filepath.Join(p.root, consts.ConfigFile)
	_, statErr := os.Stat(configPath)
	configExisted := statErr == nil

	for name, entry := range image {
		fullPath := filepath.Join(p.root, filepath.FromSlash(name))

		if _, err := os.Stat(fullPath); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to stat %s", fullPath)
		}

		if entry.Mode.IsDir() {
			if err := os.MkdirAll(fullPath, entry.Mode.Perm()); err != nil {
				return errors.Wrapf(err, "failed to create directory %s", fullPath)
			}

			continue
		}

		parentDir := filepath.Dir(fullPath)
		if err := os.MkdirAll(parentDir, consts.ModeDir); err != nil {
			return errors.Wrapf(err, "failed to create parent directory %s", parentDir)
		}

		if err := os.WriteFile(fullPath, entry.Data, consts.ModeFile); err != nil {
			return errors.Wrapf(err, "failed to write file %s", fullPath)
		}
	}

	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return errors.Wrapf(err, "failed to load %s", consts.ConfigFile)
	}

	// Options only apply to a freshly scaffolded configuration.
	if !configExisted && (options.ConnectionEnv != "" || options.Policy != "") {
		if options.ConnectionEnv != "" {
			cfg.Connection.Env = options.ConnectionEnv
		}
		if options.Policy != "" {
			cfg.Connection.Policy = options.Policy
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := writeConfig(configPath, cfg); err != nil {
			return err
		}
	}

	p.config = cfg
	return nil
}

// ExecutableDir returns the directory containing the running binary. It
// suits integrators that ship the tSQLt scripts next to their test binary.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate executable")
	}

	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return filepath.Dir(exe), nil
}

func (p *Project) ensureDirectory() error {
	dir, err := os.Stat(p.root)
	if err != nil {
		return errors.Wrapf(err, "failed to stat dir: %s", p.root)
	}

	if !dir.IsDir() {
		return errors.Errorf("%s is not a directory", p.root)
	}

	return nil
}

func writeConfig(path string, cfg *config.Config) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open config file for writing: %s", path)
	}
	defer func() { _ = f.Close() }()

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to write updated config")
	}

	return errors.Wrap(encoder.Close(), "failed to close yaml encoder")
}
