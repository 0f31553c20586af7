// Package store defines the persistence model for the tool directory
// (users, tools, audio reviews) and the repository interfaces backing it.
// Implementations live in other packages; this package must not import
// database drivers or concrete clients.
package store
