// Package logging configures structured logging for ganymede on top of
// log/slog. Components derive their loggers from slog.Default with a
// "component" attribute, so Setup installs the configured handler once
// at process start.
package logging
