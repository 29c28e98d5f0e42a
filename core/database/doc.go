// Package database provides the connection to the local persisted object
// graph (reading lists, entries, articles, talk pages).
//
// The store is an embedded sqlite database accessed through GORM. The
// connection pool is limited to a single connection: the sync engine and the
// HTTP handlers share one serialized writer, which keeps all local-store
// mutation on a single designated context.
package database
