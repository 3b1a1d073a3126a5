package formatting

import "conductorsync/internal/conductor"

// ConfigurationView is the structured summary emitted by the JSON and YAML
// formatters. Unknown document keys are not part of it.
type ConfigurationView struct {
	PersistenceDir string          `json:"persistenceDir" yaml:"persistenceDir"`
	DNAs           []DNAView       `json:"dnas" yaml:"dnas"`
	Instances      []InstanceView  `json:"instances" yaml:"instances"`
	Interfaces     []InterfaceView `json:"interfaces" yaml:"interfaces"`
}

type DNAView struct {
	ID         string `json:"id" yaml:"id"`
	File       string `json:"file" yaml:"file"`
	Hash       string `json:"hash,omitempty" yaml:"hash,omitempty"`
	HoloHosted bool   `json:"holoHosted" yaml:"holoHosted"`
	HappURL    string `json:"happUrl,omitempty" yaml:"happUrl,omitempty"`
}

type InstanceView struct {
	ID         string `json:"id" yaml:"id"`
	DNA        string `json:"dna" yaml:"dna"`
	HoloHosted bool   `json:"holoHosted" yaml:"holoHosted"`
	// DNAPresent is false when the referenced DNA is missing from the document.
	DNAPresent bool `json:"dnaPresent" yaml:"dnaPresent"`
}

type InterfaceView struct {
	ID        string          `json:"id" yaml:"id"`
	Instances []ReferenceView `json:"instances" yaml:"instances"`
}

type ReferenceView struct {
	ID    string `json:"id" yaml:"id"`
	Alias string `json:"alias,omitempty" yaml:"alias,omitempty"`
}

// NewConfigurationView summarizes cfg.
func NewConfigurationView(cfg *conductor.Configuration) ConfigurationView {
	view := ConfigurationView{
		PersistenceDir: cfg.PersistenceDir,
		DNAs:           make([]DNAView, 0, len(cfg.DNAs)),
		Instances:      make([]InstanceView, 0, len(cfg.Instances)),
		Interfaces:     make([]InterfaceView, 0, len(cfg.Interfaces)),
	}

	for _, dna := range cfg.DNAs {
		view.DNAs = append(view.DNAs, DNAView{
			ID:         dna.ID,
			File:       dna.File,
			Hash:       dna.Hash,
			HoloHosted: dna.HoloHosted,
			HappURL:    dna.HappURL,
		})
	}
	for _, instance := range cfg.Instances {
		_, found := cfg.FindDNA(instance.DNA)
		view.Instances = append(view.Instances, InstanceView{
			ID:         instance.ID,
			DNA:        instance.DNA,
			HoloHosted: instance.HoloHosted,
			DNAPresent: found,
		})
	}
	for _, iface := range cfg.Interfaces {
		refs := make([]ReferenceView, 0, len(iface.Instances))
		for _, ref := range iface.Instances {
			refs = append(refs, ReferenceView{ID: ref.ID, Alias: ref.Alias})
		}
		view.Interfaces = append(view.Interfaces, InterfaceView{ID: iface.ID, Instances: refs})
	}
	return view
}
