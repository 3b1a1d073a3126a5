// Package logging provides subsystem-tagged structured logging for conductorsync.
//
// The package wraps Go's standard slog package. Every entry carries a
// subsystem attribute so output from the document codec, the reconciler and
// the command layer can be told apart when the tool runs inside a systemd
// preStart hook.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Reconcile", "Carried forward %d instances", n)
//	logging.Debug("Relocate", "Copying %s to %s", src, dst)
//	logging.Error("Notify", err, "Resolver update failed")
//
// Standard output is reserved for the reconciled document, so callers should
// point the logger at stderr or a file.
//
// # Levels
//
// ParseLevel maps the textual levels accepted in config.yaml ("debug",
// "info", "warn", "error") onto LogLevel values.
package logging
