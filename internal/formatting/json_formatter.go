package formatting

import (
	"encoding/json"
	"fmt"
	"io"

	"conductorsync/internal/conductor"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct{}

// FormatConfiguration writes the configuration summary as indented JSON.
func (f *JSONFormatter) FormatConfiguration(w io.Writer, cfg *conductor.Configuration) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewConfigurationView(cfg)); err != nil {
		return fmt.Errorf("failed to encode configuration as JSON: %w", err)
	}
	return nil
}
