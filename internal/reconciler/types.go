package reconciler

import (
	"fmt"
)

// Scope selects which DNAs are relocated.
type Scope string

const (
	// ScopeHostedOnly relocates holo-hosted DNAs and leaves the rest in place.
	ScopeHostedOnly Scope = "hosted"

	// ScopeAll relocates every DNA in the document.
	ScopeAll Scope = "all"
)

// Naming selects how the file name of a relocated DNA is derived.
type Naming string

const (
	// NamingContentHash names the copy "<hash>.dna.json" when the DNA carries a
	// hash and falls back to the source base name otherwise.
	NamingContentHash Naming = "hash"

	// NamingBasename keeps the base name of the source file.
	NamingBasename Naming = "basename"
)

// DNAFileSuffix is appended to the hash under NamingContentHash.
const DNAFileSuffix = ".dna.json"

// Reserved interface ids.
const (
	HostedInterfaceID = "hosted-interface"
	AdminInterfaceID  = "admin-interface"
)

// RelocationPolicy controls Relocate.
type RelocationPolicy struct {
	Scope  Scope
	Naming Naming

	// Parallelism bounds the number of concurrent file copies. Values below 1 mean 1.
	Parallelism int
}

// AttachmentPolicy controls the attachment pass of Merge.
type AttachmentPolicy struct {
	// HostedInterface receives holo-hosted instances whose DNA is present.
	// Empty means HostedInterfaceID.
	HostedInterface string

	// AdminInterface receives every other instance when AttachSelfHosted is set.
	// Empty means AdminInterfaceID.
	AdminInterface string

	AttachSelfHosted bool
}

// Policy bundles the relocation and attachment policies of a run.
type Policy struct {
	Relocation RelocationPolicy
	Attachment AttachmentPolicy
}

// DefaultPolicy returns the behavior of the current document generation:
// hosted-only relocation with hash names and hosted-only attachment.
func DefaultPolicy() Policy {
	return Policy{
		Relocation: RelocationPolicy{
			Scope:       ScopeHostedOnly,
			Naming:      NamingContentHash,
			Parallelism: 1,
		},
		Attachment: AttachmentPolicy{
			HostedInterface: HostedInterfaceID,
			AdminInterface:  AdminInterfaceID,
		},
	}
}

// Validate checks that the policy only uses known options.
func (p Policy) Validate() error {
	switch p.Relocation.Scope {
	case ScopeHostedOnly, ScopeAll:
	default:
		return fmt.Errorf("unknown relocation scope %q", p.Relocation.Scope)
	}
	switch p.Relocation.Naming {
	case NamingContentHash, NamingBasename:
	default:
		return fmt.Errorf("unknown relocation naming %q", p.Relocation.Naming)
	}
	return nil
}

func (p AttachmentPolicy) hostedInterface() string {
	if p.HostedInterface == "" {
		return HostedInterfaceID
	}
	return p.HostedInterface
}

func (p AttachmentPolicy) adminInterface() string {
	if p.AdminInterface == "" {
		return AdminInterfaceID
	}
	return p.AdminInterface
}

// Relocation records one relocated DNA.
type Relocation struct {
	DNA  string
	From string
	To   string
}

// RelocationReport summarizes a Relocate call.
type RelocationReport struct {
	Relocated []Relocation
	// Skipped lists DNAs left in place because the scope excluded them.
	Skipped []string
}

// Attachment records one reference appended to an interface.
type Attachment struct {
	Instance  string
	Interface string
}

// MergeReport summarizes a Merge call.
type MergeReport struct {
	// CarriedForward lists instance ids cloned from the source document.
	CarriedForward []string
	Attached       []Attachment
	// Unattached lists instances whose target interface does not exist.
	Unattached []string
}

// Report summarizes a full reconciliation run.
type Report struct {
	Relocation RelocationReport
	Merge      MergeReport
	// Merged is false when there was no previous document to merge from.
	Merged bool
}
