// Package report renders test results and test inventories for the terminal.
package report
