// Package docker runs SQL Server in Docker for local test runs.
//
// SQLServerContainer starts a server through the testcontainers-go mssql
// module and hands out connection strings for it. Engine talks to the Docker
// API directly to find and remove containers started by an earlier process,
// which is how `tsqlrunner dev down` cleans up after `tsqlrunner dev up`.
//
// # Usage Example
//
//	container := docker.NewSQLServer(docker.SQLServerOptions{})
//
//	ctx := context.Background()
//	defer container.Stop(ctx)
//
//	if err := container.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	dsn, _ := container.GetDSN(ctx, "master")
//	client, _ := mssql.Open(ctx, dsn)
//	defer client.Close()
package docker
