package config

import (
	"time"

	"conductorsync/internal/reconciler"
)

const (
	// DefaultDocumentFileName is the conductor document inside persistence_dir.
	DefaultDocumentFileName = "conductor-config.toml"

	// DefaultDNADirectory receives relocated DNA files, relative to persistence_dir.
	DefaultDNADirectory = "dnas"

	// DefaultResolverURL is the HAPP2HOST resolver endpoint.
	DefaultResolverURL = "https://resolver.holohost.net/update/addHost"
)

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Document: DocumentConfig{
			FileName: DefaultDocumentFileName,
		},
		Relocation: RelocationConfig{
			Scope:       string(reconciler.ScopeHostedOnly),
			Naming:      string(reconciler.NamingContentHash),
			Directory:   DefaultDNADirectory,
			Parallelism: 1,
		},
		Attachment: AttachmentConfig{
			HostedInterface: reconciler.HostedInterfaceID,
			AdminInterface:  reconciler.AdminInterfaceID,
		},
		Notify: NotifyConfig{
			Enabled:    false, // Disabled by default, requires explicit enablement
			URL:        DefaultResolverURL,
			Retries:    3,
			RetryDelay: 2 * time.Second,
			Timeout:    10 * time.Second,
		},
	}
}
