package conductor

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
)

// Parse decodes a TOML conductor configuration.
//
// The returned error is a *FormatError when the text is not valid TOML, when
// persistence_dir is missing, or when a typed field has the wrong type.
func Parse(text string) (*Configuration, error) {
	var raw map[string]any
	if err := toml.Unmarshal([]byte(text), &raw); err != nil {
		ferr := &FormatError{Message: "document is not valid TOML", Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			ferr.Line, _ = derr.Position()
		}
		return nil, ferr
	}
	if raw == nil {
		raw = map[string]any{}
	}

	root := &fields{values: raw}
	cfg := &Configuration{}

	var err error
	if cfg.PersistenceDir, err = root.str(keyPersistenceDir, true); err != nil {
		return nil, err
	}

	dnaTables, err := root.tables(keyDNAs)
	if err != nil {
		return nil, err
	}
	for i, values := range dnaTables {
		dna, err := parseDNA(i, values)
		if err != nil {
			return nil, err
		}
		cfg.DNAs = append(cfg.DNAs, dna)
	}

	instanceTables, err := root.tables(keyInstances)
	if err != nil {
		return nil, err
	}
	for i, values := range instanceTables {
		instance, err := parseInstance(i, values)
		if err != nil {
			return nil, err
		}
		cfg.Instances = append(cfg.Instances, instance)
	}

	interfaceTables, err := root.tables(keyInterfaces)
	if err != nil {
		return nil, err
	}
	for i, values := range interfaceTables {
		iface, err := parseInterface(i, values)
		if err != nil {
			return nil, err
		}
		cfg.Interfaces = append(cfg.Interfaces, iface)
	}

	cfg.Extra = root.rest()
	return cfg, nil
}

func parseDNA(index int, values map[string]any) (DNA, error) {
	f := &fields{entity: fmt.Sprintf("%s[%d]", keyDNAs, index), values: values}

	var dna DNA
	var err error
	if dna.ID, err = f.identify(); err != nil {
		return DNA{}, err
	}
	if dna.File, err = f.str(keyFile, true); err != nil {
		return DNA{}, err
	}
	if dna.Hash, err = f.optional(keyHash); err != nil {
		return DNA{}, err
	}
	if dna.HoloHosted, err = f.boolean(keyHoloHosted); err != nil {
		return DNA{}, err
	}
	if dna.HappURL, err = f.optional(keyHappURL); err != nil {
		return DNA{}, err
	}
	dna.Extra = f.rest()
	return dna, nil
}

func parseInstance(index int, values map[string]any) (Instance, error) {
	f := &fields{entity: fmt.Sprintf("%s[%d]", keyInstances, index), values: values}

	var instance Instance
	var err error
	if instance.ID, err = f.identify(); err != nil {
		return Instance{}, err
	}
	if instance.DNA, err = f.str(keyDNA, true); err != nil {
		return Instance{}, err
	}
	if instance.HoloHosted, err = f.boolean(keyHoloHosted); err != nil {
		return Instance{}, err
	}
	instance.Extra = f.rest()
	return instance, nil
}

func parseInterface(index int, values map[string]any) (Interface, error) {
	f := &fields{entity: fmt.Sprintf("%s[%d]", keyInterfaces, index), values: values}

	var iface Interface
	var err error
	if iface.ID, err = f.identify(); err != nil {
		return Interface{}, err
	}

	refTables, err := f.tables(keyInstances)
	if err != nil {
		return Interface{}, err
	}
	for i, refValues := range refTables {
		rf := &fields{entity: fmt.Sprintf("%s.%s[%d]", f.entity, keyInstances, i), values: refValues}
		var ref InstanceReference
		if ref.ID, err = rf.identify(); err != nil {
			return Interface{}, err
		}
		if ref.Alias, err = rf.optional(keyAlias); err != nil {
			return Interface{}, err
		}
		ref.Extra = rf.rest()
		iface.Instances = append(iface.Instances, ref)
	}

	iface.Extra = f.rest()
	return iface, nil
}

// Serialize encodes c as pretty-printed TOML.
func (c *Configuration) Serialize() (string, error) {
	if err := c.checkEncodable(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c.document()); err != nil {
		return "", &SerializationError{Message: "TOML encoder failed", Err: err}
	}
	return buf.String(), nil
}

// document builds the generic tree handed to the encoder. Typed fields take
// precedence over Extra keys of the same name.
func (c *Configuration) document() map[string]any {
	doc := withExtra(c.Extra)
	doc[keyPersistenceDir] = c.PersistenceDir

	dnas := make([]map[string]any, 0, len(c.DNAs))
	for _, dna := range c.DNAs {
		m := withExtra(dna.Extra)
		m[keyID] = dna.ID
		m[keyFile] = dna.File
		m[keyHoloHosted] = dna.HoloHosted
		if dna.Hash != "" {
			m[keyHash] = dna.Hash
		}
		if dna.HappURL != "" {
			m[keyHappURL] = dna.HappURL
		}
		dnas = append(dnas, m)
	}
	doc[keyDNAs] = dnas

	instances := make([]map[string]any, 0, len(c.Instances))
	for _, instance := range c.Instances {
		m := withExtra(instance.Extra)
		m[keyID] = instance.ID
		m[keyDNA] = instance.DNA
		m[keyHoloHosted] = instance.HoloHosted
		instances = append(instances, m)
	}
	doc[keyInstances] = instances

	interfaces := make([]map[string]any, 0, len(c.Interfaces))
	for _, iface := range c.Interfaces {
		m := withExtra(iface.Extra)
		m[keyID] = iface.ID
		refs := make([]map[string]any, 0, len(iface.Instances))
		for _, ref := range iface.Instances {
			rm := withExtra(ref.Extra)
			rm[keyID] = ref.ID
			if ref.Alias != "" {
				rm[keyAlias] = ref.Alias
			}
			refs = append(refs, rm)
		}
		m[keyInstances] = refs
		interfaces = append(interfaces, m)
	}
	doc[keyInterfaces] = interfaces

	return doc
}

func withExtra(extra map[string]any) map[string]any {
	m := make(map[string]any, len(extra)+6)
	for k, v := range extra {
		m[k] = v
	}
	return m
}

// checkEncodable rejects strings TOML cannot represent.
func (c *Configuration) checkEncodable() error {
	check := func(entity, field, value string) error {
		if utf8.ValidString(value) {
			return nil
		}
		return &SerializationError{Entity: entity, Field: field, Message: "value is not valid UTF-8"}
	}

	if err := check("", keyPersistenceDir, c.PersistenceDir); err != nil {
		return err
	}
	if err := checkExtra("", c.Extra); err != nil {
		return err
	}
	for i, dna := range c.DNAs {
		entity := fmt.Sprintf("%s[%d]", keyDNAs, i)
		for field, value := range map[string]string{keyID: dna.ID, keyFile: dna.File, keyHash: dna.Hash, keyHappURL: dna.HappURL} {
			if err := check(entity, field, value); err != nil {
				return err
			}
		}
		if err := checkExtra(entity, dna.Extra); err != nil {
			return err
		}
	}
	for i, instance := range c.Instances {
		entity := fmt.Sprintf("%s[%d]", keyInstances, i)
		if err := check(entity, keyID, instance.ID); err != nil {
			return err
		}
		if err := check(entity, keyDNA, instance.DNA); err != nil {
			return err
		}
		if err := checkExtra(entity, instance.Extra); err != nil {
			return err
		}
	}
	for i, iface := range c.Interfaces {
		entity := fmt.Sprintf("%s[%d]", keyInterfaces, i)
		if err := check(entity, keyID, iface.ID); err != nil {
			return err
		}
		if err := checkExtra(entity, iface.Extra); err != nil {
			return err
		}
		for n, ref := range iface.Instances {
			refEntity := fmt.Sprintf("%s.%s[%d]", entity, keyInstances, n)
			if err := check(refEntity, keyID, ref.ID); err != nil {
				return err
			}
			if err := check(refEntity, keyAlias, ref.Alias); err != nil {
				return err
			}
			if err := checkExtra(refEntity, ref.Extra); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkExtra(entity string, extra map[string]any) error {
	for key, value := range extra {
		if !utf8.ValidString(key) || !validValue(value) {
			return &SerializationError{Entity: entity, Field: strings.ToValidUTF8(key, "?"), Message: "value is not valid UTF-8"}
		}
	}
	return nil
}

func validValue(v any) bool {
	switch t := v.(type) {
	case string:
		return utf8.ValidString(t)
	case map[string]any:
		for k, e := range t {
			if !utf8.ValidString(k) || !validValue(e) {
				return false
			}
		}
	case []any:
		for _, e := range t {
			if !validValue(e) {
				return false
			}
		}
	case []map[string]any:
		for _, e := range t {
			if !validValue(e) {
				return false
			}
		}
	}
	return true
}

// fields consumes typed keys from a decoded table; what is left is Extra.
type fields struct {
	entity string
	id     string
	values map[string]any
}

func (f *fields) fail(field, message string) *FormatError {
	return &FormatError{Entity: f.entity, ID: f.id, Field: field, Message: message}
}

func (f *fields) identify() (string, error) {
	id, err := f.str(keyID, true)
	if err != nil {
		return "", err
	}
	f.id = id
	return id, nil
}

// optional reads a string that Serialize omits when empty. An explicit empty
// value stays in the remaining keys so it is written back out.
func (f *fields) optional(key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", f.fail(key, fmt.Sprintf("expected a string, got %T", v))
	}
	if s != "" {
		delete(f.values, key)
	}
	return s, nil
}

func (f *fields) str(key string, required bool) (string, error) {
	v, ok := f.values[key]
	if !ok {
		if required {
			return "", f.fail(key, "missing required field")
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", f.fail(key, fmt.Sprintf("expected a string, got %T", v))
	}
	if required && strings.TrimSpace(s) == "" {
		return "", f.fail(key, "must not be empty")
	}
	delete(f.values, key)
	return s, nil
}

func (f *fields) boolean(key string) (bool, error) {
	v, ok := f.values[key]
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, f.fail(key, fmt.Sprintf("expected a boolean, got %T", v))
	}
	delete(f.values, key)
	return b, nil
}

func (f *fields) tables(key string) ([]map[string]any, error) {
	v, ok := f.values[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, f.fail(key, fmt.Sprintf("expected an array of tables, got %T", v))
	}
	out := make([]map[string]any, 0, len(list))
	for i, e := range list {
		table, ok := e.(map[string]any)
		if !ok {
			return nil, f.fail(key, fmt.Sprintf("element %d is %T, expected a table", i, e))
		}
		out = append(out, table)
	}
	delete(f.values, key)
	return out, nil
}

func (f *fields) rest() map[string]any {
	if len(f.values) == 0 {
		return nil
	}
	return f.values
}
