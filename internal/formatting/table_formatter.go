package formatting

import (
	"fmt"
	"io"
	"strings"

	"conductorsync/internal/conductor"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// FormatConfiguration renders one table each for DNAs, instances and interfaces.
func (f *TableFormatter) FormatConfiguration(w io.Writer, cfg *conductor.Configuration) error {
	view := NewConfigurationView(cfg)

	fmt.Fprintf(w, "persistence_dir: %s\n\n", view.PersistenceDir)

	dnas := f.createTable(w, "DNAs")
	dnas.AppendHeader(table.Row{"ID", "FILE", "HASH", "HOSTED", "HAPP URL"})
	for _, dna := range view.DNAs {
		dnas.AppendRow(table.Row{dna.ID, dna.File, dna.Hash, yesNo(dna.HoloHosted), dna.HappURL})
	}
	dnas.Render()
	fmt.Fprintln(w)

	instances := f.createTable(w, "Instances")
	instances.AppendHeader(table.Row{"ID", "DNA", "HOSTED", "DNA PRESENT"})
	for _, instance := range view.Instances {
		instances.AppendRow(table.Row{instance.ID, instance.DNA, yesNo(instance.HoloHosted), yesNo(instance.DNAPresent)})
	}
	instances.Render()
	fmt.Fprintln(w)

	interfaces := f.createTable(w, "Interfaces")
	interfaces.AppendHeader(table.Row{"ID", "INSTANCES"})
	for _, iface := range view.Interfaces {
		ids := make([]string, 0, len(iface.Instances))
		for _, ref := range iface.Instances {
			if ref.Alias != "" {
				ids = append(ids, fmt.Sprintf("%s (%s)", ref.ID, ref.Alias))
				continue
			}
			ids = append(ids, ref.ID)
		}
		interfaces.AppendRow(table.Row{iface.ID, strings.Join(ids, ", ")})
	}
	interfaces.Render()
	return nil
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "HOSTED", Align: text.AlignCenter},
		{Name: "DNA PRESENT", Align: text.AlignCenter},
	})
	if f.options.Color {
		t.Style().Color.Header = text.Colors{text.FgHiCyan}
	}
	return t
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
