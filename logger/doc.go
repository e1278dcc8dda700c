// Package logger provides structured logging for pmnps using zerolog.
//
// Logs go to stderr by default so they never mix with the build output that
// member processes write to stdout.
//
// # Configuration
//
//	{
//	  "logging": { "level": "info", "format": "console" }
//	}
//
// # Usage
//
//	log := logger.Get("scheduler")
//	log.Info("batch started", logger.Fields("batch", 0, "size", 3))
package logger
