// Package store holds the shared types and sentinel errors of the
// persistence layer: pagination parameters, the dependency-free Logger
// interface, and the error taxonomy consumed by engine callers.
package store

import "errors"

var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrNoRows = errors.New("no rows in result set")
var ErrBuildingQueryFailed = errors.New("failed to build sql query")
var ErrQueryFailed = errors.New("database query execution failed")
var ErrExecFailed = errors.New("database statement execution failed")
var ErrScanningRowFailed = errors.New("failed to scan database row")
var ErrRowsFailed = errors.New("database row stream failed")
var ErrRowsAffectedFailed = errors.New("failed to get rows affected count")
var ErrColumnConversion = errors.New("failed to convert column value")
var ErrMissingReturnedID = errors.New("insert did not return an id")
