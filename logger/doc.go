// Package logger provides structured logging for openbatch using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers. The batch writer and the file validator log
// through component loggers named "batch" and "verify".
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("batch")
//	log.Info("session opened", logger.Fields("path", path))
package logger
