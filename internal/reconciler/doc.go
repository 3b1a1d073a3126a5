// Package reconciler carries runtime state from a previously persisted
// conductor configuration into a freshly generated one.
//
// # Overview
//
// A reconciliation run has two steps, always in this order:
//
//   - Relocate: copy DNA files into the conductor's managed storage
//     directory and rewrite each DNA's file location.
//   - Merge: carry holo-hosted instances forward from the previous document
//     and re-derive interface attachments for every instance.
//
// Both steps are driven by an explicit Policy so that the behaviors of the
// different document generations can be selected instead of hard-coded:
//
//   - RelocationPolicy.Scope picks between relocating only holo-hosted DNAs
//     (ScopeHostedOnly) or every DNA (ScopeAll).
//   - RelocationPolicy.Naming picks between content-hash file names
//     ("<hash>.dna.json") and the source file's base name.
//   - AttachmentPolicy.AttachSelfHosted additionally attaches every other
//     instance to the admin interface.
//
// # Usage
//
//	r := reconciler.New(reconciler.DefaultPolicy())
//	report, err := r.Reconcile(ctx, next, previous, filepath.Join(next.PersistenceDir, "dnas"))
//	if err != nil {
//	    return err // *reconciler.IoError
//	}
//
// # Re-running Merge
//
// Attachment is append-only. Merging twice into the same destination appends
// every reference a second time, so a destination document must be merged at
// most once.
package reconciler
