// Package server holds configuration for the HTTP surface of the sync daemon.
//
// The server itself is assembled in the start command; this package only owns
// the partial configuration (port and API key) so that core/config can compose
// it with the other partial configs.
package server
