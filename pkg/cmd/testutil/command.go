package testutil

import (
	"bytes"
	"testing"

	"github.com/urfave/cli/v3"
)

// RunCommand executes command under a test app and returns everything it
// wrote to the app's writer.
func RunCommand(t *testing.T, command *cli.Command, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	app := &cli.Command{
		Name:      "test",
		Writer:    &buf,
		ErrWriter: &buf,
		Commands:  []*cli.Command{command},
	}

	fullArgs := append([]string{"test", command.Name}, args...)
	err := app.Run(t.Context(), fullArgs)
	return buf.String(), err
}
