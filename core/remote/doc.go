// Package remote provides the HTTP transport shared by the feature-level
// remote clients (reading lists and talk pages).
//
// The Client wraps a plain JSON HTTP client with bearer authentication and
// bounded retry: network failures and 5xx responses are retried with backoff,
// 4xx responses surface immediately as a StatusError. The sync engine treats
// any returned error uniformly, so timeout semantics live entirely here.
package remote
