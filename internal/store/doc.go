// Package store persists app configuration under the clasp home directory.
// Writes go through a temp file and rename so a crash never leaves a torn
// config behind.
package store
