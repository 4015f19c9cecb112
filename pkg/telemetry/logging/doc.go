// Package logging constructs the process-wide structured logger from
// configuration. Sentinel logs through log/slog everywhere; this package
// only decides the handler, level, and output format.
package logging
