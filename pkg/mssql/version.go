package mssql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// VersionInfo represents parsed SQL Server version information
type VersionInfo struct {
	Major int    // Major version number (e.g., 16 for SQL Server 2022)
	Minor int    // Minor version number
	Build int    // Build number (e.g., 4135)
	Raw   string // Raw product version string
}

// String returns the version as a string in format "major.minor.build"
func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Build)
}

// IsAtLeast checks if this version is at least the specified version
func (v VersionInfo) IsAtLeast(major, minor int) bool {
	if v.Major > major {
		return true
	}
	return v.Major == major && v.Minor >= minor
}

// ServerVersion retrieves and parses the product version of the connected server.
func (c *Client) ServerVersion(ctx context.Context) (*VersionInfo, error) {
	rows, err := c.Query(ctx, "SELECT CAST(SERVERPROPERTY('ProductVersion') AS nvarchar(128))")
	if err != nil {
		return nil, errors.Wrap(err, "failed to query SQL Server version")
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.Wrap(err, "failed to query SQL Server version")
		}
		return nil, errors.New("failed to query SQL Server version: no rows returned")
	}

	var raw string
	if err := rows.Scan(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to scan SQL Server version")
	}

	version, err := ParseVersion(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse SQL Server version: %s", raw)
	}

	return version, nil
}

// ParseVersion parses a product version such as "16.0.4135.4".
func ParseVersion(raw string) (*VersionInfo, error) {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) < 2 {
		return nil, errors.Errorf("unexpected version format: %q", raw)
	}

	nums := make([]int, 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid version component %q", parts[i])
		}
		nums[i] = n
	}

	return &VersionInfo{
		Major: nums[0],
		Minor: nums[1],
		Build: nums[2],
		Raw:   raw,
	}, nil
}
