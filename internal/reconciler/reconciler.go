package reconciler

import (
	"context"
	"fmt"

	"conductorsync/internal/conductor"
	"conductorsync/pkg/logging"
)

// Reconciler runs relocation and merge with a fixed policy.
type Reconciler struct {
	policy Policy
}

// New creates a Reconciler.
func New(policy Policy) *Reconciler {
	return &Reconciler{policy: policy}
}

// Policy returns the policy the reconciler was created with.
func (r *Reconciler) Policy() Policy {
	return r.policy
}

// Reconcile relocates the DNAs of next into targetDir and then merges state
// from previous into next. previous may be nil on first boot, in which case
// only relocation happens. Merge runs only after relocation has succeeded.
func (r *Reconciler) Reconcile(ctx context.Context, next, previous *conductor.Configuration, targetDir string) (Report, error) {
	var report Report

	if err := r.policy.Validate(); err != nil {
		return report, fmt.Errorf("invalid reconcile policy: %w", err)
	}

	relocation, err := Relocate(ctx, next, targetDir, r.policy.Relocation)
	if err != nil {
		return report, err
	}
	report.Relocation = relocation

	if previous == nil {
		logging.Info("Reconciler", "No previous configuration, skipping merge")
		return report, nil
	}

	report.Merge = Merge(next, previous, r.policy.Attachment)
	report.Merged = true
	return report, nil
}
