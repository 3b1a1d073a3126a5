// Package config provides configuration management for conductorsync.
//
// # Configuration Directory
//
// Tool settings are read from config.yaml in a single configuration
// directory. The default location is ~/.config/conductorsync; commands accept
// --config-path to point somewhere else. A missing config.yaml is not an
// error: the defaults below apply.
//
// # File Format
//
//	logLevel: info
//	document:
//	  fileName: conductor-config.toml
//	relocation:
//	  scope: hosted        # hosted | all
//	  naming: hash         # hash | basename
//	  directory: dnas      # relative to the conductor's persistence_dir
//	  parallelism: 1
//	attachment:
//	  hostedInterface: hosted-interface
//	  adminInterface: admin-interface
//	  attachSelfHosted: false
//	notify:
//	  enabled: false
//	  url: https://resolver.holohost.net/update/addHost
//	  retries: 3
//	  retryDelay: 2s
//	  timeout: 10s
//
// Keys left out of the file keep their default value.
//
// # Document Storage
//
// Storage reads and writes the conductor configuration document inside the
// conductor's persistence directory. Writes go through a temporary file and a
// rename so a crash never leaves a truncated document behind.
//
// # Error Handling
//
// Load returns a ConfigurationError describing the file, the kind of failure
// (io, parse or validation) and suggestions for fixing it.
package config
