// Package conductor models the Holochain conductor configuration document.
//
// A Configuration holds ordered collections of DNAs (deployable artifacts),
// instances (bindings of a DNA to an agent) and interfaces (attachment points
// that expose instances), plus the conductor's persistence directory.
//
// The document is TOML. Only the fields the reconciler needs are typed; every
// other key, at the top level and inside each entity, is kept verbatim in the
// entity's Extra map so a parse, mutate, serialize cycle never drops settings
// this tool does not know about:
//
//	cfg, err := conductor.Parse(text)
//	if err != nil {
//	    return err // *conductor.FormatError
//	}
//	out, err := cfg.Serialize()
//
// Cross references (instance to DNA, interface entry to instance) are plain
// identifiers resolved by lookup, see Configuration.FindDNA.
package conductor
