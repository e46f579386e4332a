package mssql_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/pseudomuto/tsqlrunner/pkg/mssql"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	t.Run("closes exactly once", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)

		mock.ExpectPing()
		mock.ExpectClose()

		client, err := mssql.NewClient(ctx, db)
		require.NoError(t, err)

		require.NoError(t, client.Close())
		require.NoError(t, client.Close())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("fails when the server cannot be reached", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)

		mock.ExpectPing().WillReturnError(errors.New("login failed for user 'sa'"))
		mock.ExpectClose()

		client, err := mssql.NewClient(ctx, db)
		require.Nil(t, client)
		require.ErrorContains(t, err, "failed to connect to SQL Server")
		require.ErrorContains(t, err, "login failed")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClient_Query(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New(
		sqlmock.MonitorPingsOption(true),
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
	)
	require.NoError(t, err)

	mock.ExpectPing()
	mock.ExpectQuery("SELECT Name FROM tSQLt.TestClasses WHERE Name = @p1").
		WithArgs("AcceptanceTests").
		WillReturnRows(sqlmock.NewRows([]string{"Name"}).AddRow("AcceptanceTests"))
	mock.ExpectClose()

	client, err := mssql.NewClient(ctx, db)
	require.NoError(t, err)

	rows, err := client.Query(ctx, "SELECT Name FROM tSQLt.TestClasses WHERE Name = @p1", "AcceptanceTests")
	require.NoError(t, err)

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())
	require.Equal(t, []string{"AcceptanceTests"}, names)

	require.NoError(t, client.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_ServerVersion(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New(
		sqlmock.MonitorPingsOption(true),
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
	)
	require.NoError(t, err)

	mock.ExpectPing()
	mock.ExpectQuery("SELECT CAST(SERVERPROPERTY('ProductVersion') AS nvarchar(128))").
		WillReturnRows(sqlmock.NewRows([]string{""}).AddRow("16.0.4135.4"))
	mock.ExpectClose()

	client, err := mssql.NewClient(ctx, db)
	require.NoError(t, err)
	defer func() { require.NoError(t, client.Close()) }()

	version, err := client.ServerVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 16, version.Major)
	require.Equal(t, 4135, version.Build)
	require.True(t, version.IsAtLeast(11, 0))
}

func TestClient_UseAfterClose(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()
	mock.ExpectClose()

	client, err := mssql.NewClient(ctx, db)
	require.NoError(t, err)
	require.NoError(t, client.Close())

	require.EqualError(t, client.Exec(ctx, "SELECT 1"), "connection is closed")

	_, err = client.Query(ctx, "SELECT 1")
	require.EqualError(t, err, "connection is closed")
	require.NoError(t, mock.ExpectationsWereMet())
}
