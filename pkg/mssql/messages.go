package mssql

import (
	"context"

	"github.com/golang-sql/sqlexp"
)

type (
	// messageQueue is the consumer side of sqlexp.ReturnMessage.
	messageQueue interface {
		Message(context.Context) sqlexp.RawMessage
	}

	// resultRows is the part of *sql.Rows needed to walk every result set.
	resultRows interface {
		Next() bool
		NextResultSet() bool
		Err() error
	}
)

// drain consumes the messages of a running batch until the last result set
// has been read. Rows are discarded, notices go to notify and the first error
// is returned once the batch has finished.
func drain(ctx context.Context, q messageQueue, rows resultRows, notify func(string)) error {
	var firstErr error

	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for {
		switch m := q.Message(ctx).(type) {
		case sqlexp.MsgNotice:
			if notify != nil && m.Message != nil {
				notify(m.Message.String())
			}

		case sqlexp.MsgError:
			keep(m.Error)

		case sqlexp.MsgNext:
			for rows.Next() {
			}

		case sqlexp.MsgNextResultSet:
			if !rows.NextResultSet() {
				keep(rows.Err())
				return firstErr
			}

		case nil:
			keep(ctx.Err())
			return firstErr
		}
	}
}
