package conductor

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// TOML keys of the typed fields.
const (
	keyDNAs           = "dnas"
	keyInstances      = "instances"
	keyInterfaces     = "interfaces"
	keyPersistenceDir = "persistence_dir"
	keyID             = "id"
	keyFile           = "file"
	keyHash           = "hash"
	keyHoloHosted     = "holo-hosted"
	keyHappURL        = "happ-url"
	keyDNA            = "dna"
	keyAlias          = "alias"
)

// Configuration is the root of a conductor configuration document.
type Configuration struct {
	DNAs           []DNA
	Instances      []Instance
	Interfaces     []Interface
	PersistenceDir string

	// Extra holds top-level keys without a typed field.
	Extra map[string]any
}

// DNA is a deployable artifact backed by a file.
type DNA struct {
	ID   string
	File string
	// Hash is the content hash of the DNA, empty when the document does not carry one.
	Hash       string
	HoloHosted bool
	// HappURL is the public URL of a holo-hosted hApp.
	HappURL string
	Extra   map[string]any
}

// Instance binds a DNA, referenced by id, to an agent.
type Instance struct {
	ID         string
	DNA        string
	HoloHosted bool
	Extra      map[string]any
}

// Interface exposes a set of instances.
type Interface struct {
	ID        string
	Instances []InstanceReference
	Extra     map[string]any
}

// InstanceReference attaches an instance to an interface.
type InstanceReference struct {
	ID    string
	Alias string
	Extra map[string]any
}

// Equal reports whether c and other are structurally equal. Collection order
// is significant; nil and empty collections compare equal, as do NaNs.
func (c *Configuration) Equal(other *Configuration) bool {
	if c == nil || other == nil {
		return c == other
	}
	// Values, not pointers: cmp would otherwise call this method again.
	return cmp.Equal(*c, *other, equalOptions...)
}

// Diff returns a human readable description of the differences between c and
// other, or the empty string when they are equal.
func (c *Configuration) Diff(other *Configuration) string {
	if c == nil || other == nil {
		if c == other {
			return ""
		}
		return cmp.Diff(c == nil, other == nil)
	}
	return cmp.Diff(*c, *other, equalOptions...)
}

var equalOptions = []cmp.Option{cmpopts.EquateEmpty(), cmpopts.EquateNaNs()}

// FindDNA returns a copy of the first DNA with the given id.
func (c *Configuration) FindDNA(id string) (DNA, bool) {
	for _, dna := range c.DNAs {
		if dna.ID == id {
			return dna.Clone(), true
		}
	}
	return DNA{}, false
}

// Interface returns a pointer to the first interface with the given id so
// callers can attach instances in place.
func (c *Configuration) Interface(id string) (*Interface, bool) {
	for i := range c.Interfaces {
		if c.Interfaces[i].ID == id {
			return &c.Interfaces[i], true
		}
	}
	return nil, false
}

// HostedHappURLs returns the hApp URLs of all holo-hosted DNAs in document order.
func (c *Configuration) HostedHappURLs() []string {
	var urls []string
	for _, dna := range c.DNAs {
		if dna.HoloHosted && dna.HappURL != "" {
			urls = append(urls, dna.HappURL)
		}
	}
	return urls
}

// Clone returns a deep copy of c.
func (c *Configuration) Clone() *Configuration {
	out := &Configuration{
		PersistenceDir: c.PersistenceDir,
		Extra:          cloneMap(c.Extra),
	}
	if c.DNAs != nil {
		out.DNAs = make([]DNA, len(c.DNAs))
		for i, dna := range c.DNAs {
			out.DNAs[i] = dna.Clone()
		}
	}
	if c.Instances != nil {
		out.Instances = make([]Instance, len(c.Instances))
		for i, instance := range c.Instances {
			out.Instances[i] = instance.Clone()
		}
	}
	if c.Interfaces != nil {
		out.Interfaces = make([]Interface, len(c.Interfaces))
		for i, iface := range c.Interfaces {
			out.Interfaces[i] = iface.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of d.
func (d DNA) Clone() DNA {
	d.Extra = cloneMap(d.Extra)
	return d
}

// Clone returns a deep copy of i.
func (i Instance) Clone() Instance {
	i.Extra = cloneMap(i.Extra)
	return i
}

// Clone returns a deep copy of i.
func (i Interface) Clone() Interface {
	i.Extra = cloneMap(i.Extra)
	if i.Instances != nil {
		refs := make([]InstanceReference, len(i.Instances))
		for n, ref := range i.Instances {
			refs[n] = ref.Clone()
		}
		i.Instances = refs
	}
	return i
}

// Clone returns a deep copy of r.
func (r InstanceReference) Clone() InstanceReference {
	r.Extra = cloneMap(r.Extra)
	return r
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, e := range t {
			out[i] = cloneMap(e)
		}
		return out
	default:
		return v
	}
}
