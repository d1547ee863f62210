// Package config loads the openbatch configuration.
//
// Values are layered: built-in defaults, then the first config file found
// (openbatch.yml, config/openbatch.yml, config.yml, ...), then environment
// variables carrying the OPENBATCH_ prefix. A .env.openbatch or .env file is
// loaded into the environment first without overriding variables already set.
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	cfg.InitLogging()
//	opts, err := cfg.WriterOptions()
//
// Nested keys map to underscore-joined variable names, so writer.scan_existing
// is set by OPENBATCH_WRITER_SCAN_EXISTING.
package config
