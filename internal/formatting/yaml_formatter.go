package formatting

import (
	"fmt"
	"io"

	"conductorsync/internal/conductor"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct{}

// FormatConfiguration writes the configuration summary as YAML.
func (f *YAMLFormatter) FormatConfiguration(w io.Writer, cfg *conductor.Configuration) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewConfigurationView(cfg)); err != nil {
		return fmt.Errorf("failed to encode configuration as YAML: %w", err)
	}
	return enc.Close()
}
