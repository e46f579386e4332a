package harness

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Outcomes recorded by tSQLt in tSQLt.TestResult.Result.
const (
	ResultSuccess = "Success"
	ResultFailure = "Failure"
	ResultError   = "Error"
	ResultSkipped = "Skipped"
)

const resultsQuery = `SELECT Class, TestCase, Result, Msg,
  DATEDIFF(MILLISECOND, TestStartTime, TestEndTime)
FROM tSQLt.TestResult
ORDER BY Id;`

// TestResult is the outcome of a single tSQLt test case.
type TestResult struct {
	Class    string
	Name     string
	Result   string
	Message  string
	Duration time.Duration
}

// Passed reports whether the test case succeeded.
func (r *TestResult) Passed() bool {
	return r.Result == ResultSuccess
}

// FullName returns the name tSQLt uses for the test, e.g. [Class].[test name].
func (r *TestResult) FullName() string {
	return "[" + r.Class + "].[" + r.Name + "]"
}

func (h *Harness) readResults(ctx context.Context) ([]*TestResult, error) {
	rows, err := h.conn.Query(ctx, resultsQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query tSQLt.TestResult")
	}
	defer func() { _ = rows.Close() }()

	var results []*TestResult
	for rows.Next() {
		var (
			r        TestResult
			msg      sql.NullString
			duration sql.NullInt64
		)

		if err := rows.Scan(&r.Class, &r.Name, &r.Result, &msg, &duration); err != nil {
			return nil, errors.Wrap(err, "failed to scan test result")
		}

		r.Message = msg.String
		r.Duration = time.Duration(duration.Int64) * time.Millisecond
		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read test results")
	}

	return results, nil
}
