package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/pseudomuto/tsqlrunner/pkg/output"
	"github.com/pseudomuto/tsqlrunner/pkg/script"
)

type (
	// DB defines the database operation required by the executor. A batch is
	// sent as one command and Exec must not return before it has completed.
	DB interface {
		Exec(ctx context.Context, batch string) error
	}

	// Executor runs scripts batch by batch against a single connection.
	//
	// Batches run strictly in file order. The first failure stops the script;
	// nothing is retried and no later batch is attempted.
	//
	// Example usage:
	//
	//	exec := executor.New(executor.Config{
	//		DB:     client,
	//		Output: output.New(),
	//	})
	//
	//	s, err := script.Load(os.DirFS(root), "tests/AcceptanceTests.sql")
	//	if err != nil {
	//		log.Fatal(err)
	//	}
	//
	//	result, err := exec.Execute(ctx, s)
	//	if err != nil {
	//		log.Fatalf("%s failed after %d batches: %v", result.Path, result.BatchesApplied, err)
	//	}
	Executor struct {
		db       DB
		trailing script.TrailingPolicy
		out      *output.Writer
	}

	// Config contains configuration options for creating a new Executor.
	Config struct {
		// DB is the connection batches are sent to
		DB DB

		// Trailing decides whether content after the last GO is executed
		Trailing script.TrailingPolicy

		// Output receives progress lines (optional)
		Output *output.Writer
	}

	// ExecutionResult contains the result of executing a single script.
	ExecutionResult struct {
		// Path is the script that was executed
		Path string

		// Status indicates the outcome of the execution
		Status ExecutionStatus

		// Error contains the error that stopped execution, if any
		Error error

		// ExecutionTime records how long the script took to execute
		ExecutionTime time.Duration

		// BatchesApplied is the number of batches that completed successfully
		BatchesApplied int

		// TotalBatches is the number of batches in the script
		TotalBatches int
	}

	// ExecutionStatus represents the outcome of a script execution.
	ExecutionStatus string
)

const (
	// StatusSuccess indicates every batch in the script was executed
	StatusSuccess ExecutionStatus = "success"

	// StatusFailed indicates a batch failed and the script was abandoned
	StatusFailed ExecutionStatus = "failed"
)

// New creates a new script executor with the provided configuration.
func New(config Config) *Executor {
	return &Executor{
		db:       config.DB,
		trailing: config.Trailing,
		out:      config.Output,
	}
}

// Plan returns the batches Execute would send for s, in order.
func (e *Executor) Plan(s *script.Script) []*script.Batch {
	return s.Batches(e.trailing)
}

// Execute sends every batch of s to the database, one after the other.
//
// The returned result is always populated. When a batch fails the error is
// returned as well, wrapped with the script path, batch number and the line
// the batch starts on.
func (e *Executor) Execute(ctx context.Context, s *script.Script) (*ExecutionResult, error) {
	startTime := time.Now()
	batches := e.Plan(s)

	result := &ExecutionResult{
		Path:         s.Path,
		Status:       StatusSuccess,
		TotalBatches: len(batches),
	}

	slog.Debug("Executing script", "path", s.Path, "batches", len(batches))

	for _, batch := range batches {
		if err := e.db.Exec(ctx, batch.SQL); err != nil {
			result.Status = StatusFailed
			result.Error = errors.Wrapf(err, "failed to execute batch %d (line %d) of %s", batch.Index, batch.Line, s.Path)
			break
		}

		result.BatchesApplied++
	}

	result.ExecutionTime = time.Since(startTime)

	if result.Error != nil {
		e.out.Printf("Failed %s after %d/%d batches", s.Path, result.BatchesApplied, result.TotalBatches)
		return result, result.Error
	}

	slog.Debug("Executed script",
		"path", s.Path,
		"batches", result.BatchesApplied,
		"duration", result.ExecutionTime,
	)

	return result, nil
}
