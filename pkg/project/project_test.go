package project_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/pseudomuto/tsqlrunner/pkg/config"
	"github.com/pseudomuto/tsqlrunner/pkg/consts"
	"github.com/pseudomuto/tsqlrunner/pkg/project"
	"github.com/stretchr/testify/require"
)

func TestProjectInitialize(t *testing.T) {
	t.Run("creates all missing directories and files", func(t *testing.T) {
		tmpDir := t.TempDir()

		proj := project.New(project.ProjectParams{Dir: tmpDir})
		require.NoError(t, proj.Initialize(project.InitOptions{}))

		require.DirExists(t, filepath.Join(tmpDir, "tests"))
		require.DirExists(t, filepath.Join(tmpDir, consts.DefaultFrameworkDir))
		require.FileExists(t, filepath.Join(tmpDir, consts.ConfigFile))
		require.FileExists(t, filepath.Join(tmpDir, "tests", "ExampleTests.sql"))

		cfg := proj.Config()
		require.Equal(t, config.PolicyRequired, cfg.Connection.Policy)
		require.Equal(t, "tests", cfg.Tests.Dir)

		scripts, err := proj.TestScripts()
		require.NoError(t, err)
		require.Equal(t, []string{"tests/ExampleTests.sql"}, scripts)
	})

	t.Run("preserves existing files", func(t *testing.T) {
		tmpDir := t.TempDir()

		existing := []byte("tests:\n  dir: db/tests\nconnection:\n  policy: fallback\n")
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, consts.ConfigFile), existing, consts.ModeFile))

		proj := project.New(project.ProjectParams{Dir: tmpDir})
		require.NoError(t, proj.Initialize(project.InitOptions{Policy: config.PolicyRequired}))

		data, err := os.ReadFile(filepath.Join(tmpDir, consts.ConfigFile))
		require.NoError(t, err)
		require.Equal(t, existing, data)

		require.Equal(t, "db/tests", proj.Config().Tests.Dir)
		require.Equal(t, config.PolicyFallback, proj.Config().Connection.Policy)
	})

	t.Run("is idempotent", func(t *testing.T) {
		tmpDir := t.TempDir()

		proj := project.New(project.ProjectParams{Dir: tmpDir})
		require.NoError(t, proj.Initialize(project.InitOptions{}))

		examplePath := filepath.Join(tmpDir, "tests", "ExampleTests.sql")
		require.NoError(t, os.WriteFile(examplePath, []byte("-- mine"), consts.ModeFile))

		require.NoError(t, proj.Initialize(project.InitOptions{}))

		data, err := os.ReadFile(examplePath)
		require.NoError(t, err)
		require.Equal(t, "-- mine", string(data))
	})

	t.Run("applies options to a new configuration", func(t *testing.T) {
		tmpDir := t.TempDir()

		proj := project.New(project.ProjectParams{Dir: tmpDir})
		require.NoError(t, proj.Initialize(project.InitOptions{
			ConnectionEnv: "SAMPLE_DB",
			Policy:        config.PolicyFallback,
		}))

		cfg, err := config.LoadConfigFile(filepath.Join(tmpDir, consts.ConfigFile))
		require.NoError(t, err)
		require.Equal(t, "SAMPLE_DB", cfg.Connection.Env)
		require.Equal(t, config.PolicyFallback, cfg.Connection.Policy)
		require.Equal(t, "tests", cfg.Tests.Dir)
	})

	t.Run("rejects invalid options", func(t *testing.T) {
		proj := project.New(project.ProjectParams{Dir: t.TempDir()})
		err := proj.Initialize(project.InitOptions{Policy: "sometimes"})
		require.ErrorContains(t, err, "unknown connection policy")
	})

	t.Run("fails for a missing directory", func(t *testing.T) {
		proj := project.New(project.ProjectParams{Dir: filepath.Join(t.TempDir(), "missing")})
		require.ErrorContains(t, proj.Initialize(project.InitOptions{}), "failed to stat dir")
	})

	t.Run("fails for a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, nil, consts.ModeFile))

		proj := project.New(project.ProjectParams{Dir: file})
		require.ErrorContains(t, proj.Initialize(project.InitOptions{}), "is not a directory")
	})
}

func TestLoad(t *testing.T) {
	t.Run("uses defaults without a configuration file", func(t *testing.T) {
		proj, err := project.Load(project.ProjectParams{Dir: "unused", FS: fstest.MapFS{}})
		require.NoError(t, err)

		require.Equal(t, config.Default(), proj.Config())
		require.Equal(t, "tSQLt_V1.0.8083.3529/PrepareServer.sql", proj.PrepareScript())
		require.Equal(t, "tSQLt_V1.0.8083.3529/tSQLt.class.sql", proj.FrameworkScript())
	})

	t.Run("reads the configuration file", func(t *testing.T) {
		fsys := fstest.MapFS{
			consts.ConfigFile: {Data: []byte("framework:\n  dir: vendor/tSQLt\n  install: Install.sql\n")},
		}

		proj, err := project.Load(project.ProjectParams{FS: fsys})
		require.NoError(t, err)

		require.Equal(t, ".", proj.Root())
		require.Equal(t, "vendor/tSQLt/PrepareServer.sql", proj.PrepareScript())
		require.Equal(t, "vendor/tSQLt/Install.sql", proj.FrameworkScript())
	})

	t.Run("reports invalid configuration", func(t *testing.T) {
		fsys := fstest.MapFS{
			consts.ConfigFile: {Data: []byte("script:\n  trailing: sometimes\n")},
		}

		_, err := project.Load(project.ProjectParams{FS: fsys})
		require.ErrorContains(t, err, "failed to load tsqlrunner.yaml")
	})
}

func TestExecutableDir(t *testing.T) {
	dir, err := project.ExecutableDir()
	require.NoError(t, err)
	require.DirExists(t, dir)
}
