// Package storage provides an S3-compatible object storage client used by the
// archive feature to keep off-device snapshots of reading lists.
//
// The Client interface wraps the subset of Minio operations the application
// needs, which keeps the archive service testable with the mocks subpackage.
package storage
