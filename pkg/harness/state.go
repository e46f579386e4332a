package harness

import "github.com/pkg/errors"

// State is a position in the test lifecycle. Each step moves the harness
// from one state to the next and no step can be skipped or repeated.
type State int

const (
	// Uninitialized is the state of a freshly opened harness
	Uninitialized State = iota

	// ServerPrepared means the server preparation script has run
	ServerPrepared

	// FrameworkConfigured means tSQLt has been installed
	FrameworkConfigured

	// TestsDeployed means every test definition script has run
	TestsDeployed

	// TestsExecuted means the test run has completed
	TestsExecuted
)

var (
	// ErrOutOfOrder is returned when a step is invoked before the step it
	// depends on has completed, or after it has already run.
	ErrOutOfOrder = errors.New("lifecycle step out of order")

	// ErrAborted is returned by every step after one has failed.
	ErrAborted = errors.New("lifecycle aborted by an earlier failure")

	// ErrClosed is returned by steps invoked after Close.
	ErrClosed = errors.New("harness is closed")
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case ServerPrepared:
		return "server prepared"
	case FrameworkConfigured:
		return "framework configured"
	case TestsDeployed:
		return "tests deployed"
	case TestsExecuted:
		return "tests executed"
	default:
		return "unknown"
	}
}

// transition runs fn when the harness is in state from and moves it to state
// to when fn succeeds. A failure aborts the lifecycle.
func (h *Harness) transition(from, to State, fn func() error) error {
	if h.closed {
		return ErrClosed
	}

	if h.failure != nil {
		return errors.Wrapf(ErrAborted, "cannot reach %q", to)
	}

	if h.state != from {
		return errors.Wrapf(ErrOutOfOrder, "cannot reach %q from %q", to, h.state)
	}

	if err := fn(); err != nil {
		h.failure = err
		return err
	}

	h.state = to
	return nil
}
