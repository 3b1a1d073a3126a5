package config

import (
	"time"

	"conductorsync/internal/reconciler"
)

// Config is the top-level configuration structure for conductorsync.
type Config struct {
	LogLevel   string           `yaml:"logLevel,omitempty"`
	Document   DocumentConfig   `yaml:"document"`
	Relocation RelocationConfig `yaml:"relocation"`
	Attachment AttachmentConfig `yaml:"attachment"`
	Notify     NotifyConfig     `yaml:"notify"`
}

// DocumentConfig locates the persisted conductor document.
type DocumentConfig struct {
	FileName string `yaml:"fileName,omitempty"` // File name inside persistence_dir (default: conductor-config.toml)
}

// RelocationConfig selects the DNA relocation policy.
type RelocationConfig struct {
	Scope       string `yaml:"scope,omitempty"`       // "hosted" or "all"
	Naming      string `yaml:"naming,omitempty"`      // "hash" or "basename"
	Directory   string `yaml:"directory,omitempty"`   // Relative to persistence_dir (default: dnas)
	Parallelism int    `yaml:"parallelism,omitempty"` // Concurrent copies (default: 1)
}

// AttachmentConfig selects the interface attachment policy.
type AttachmentConfig struct {
	HostedInterface  string `yaml:"hostedInterface,omitempty"`
	AdminInterface   string `yaml:"adminInterface,omitempty"`
	AttachSelfHosted bool   `yaml:"attachSelfHosted,omitempty"`
}

// NotifyConfig configures the resolver notification sent after a run.
type NotifyConfig struct {
	Enabled    bool          `yaml:"enabled,omitempty"`
	URL        string        `yaml:"url,omitempty"`
	Retries    int           `yaml:"retries,omitempty"`
	RetryDelay time.Duration `yaml:"retryDelay,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
}

// Policy converts the relocation and attachment sections into a reconciler policy.
func (c Config) Policy() reconciler.Policy {
	return reconciler.Policy{
		Relocation: reconciler.RelocationPolicy{
			Scope:       reconciler.Scope(c.Relocation.Scope),
			Naming:      reconciler.Naming(c.Relocation.Naming),
			Parallelism: c.Relocation.Parallelism,
		},
		Attachment: reconciler.AttachmentPolicy{
			HostedInterface:  c.Attachment.HostedInterface,
			AdminInterface:   c.Attachment.AdminInterface,
			AttachSelfHosted: c.Attachment.AttachSelfHosted,
		},
	}
}
