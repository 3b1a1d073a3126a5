package reconciler

import (
	"conductorsync/internal/conductor"
	"conductorsync/pkg/logging"
)

// Merge carries selected state from src into dst.
//
// Every holo-hosted instance of src is cloned and appended to dst. Then every
// instance now in dst is attached again: holo-hosted instances whose DNA is
// present in dst go to the hosted interface; with AttachSelfHosted set, all
// other instances go to the admin interface. A missing interface is skipped.
//
// Attachment never checks for existing references, so merging twice into the
// same dst duplicates them.
func Merge(dst, src *conductor.Configuration, policy AttachmentPolicy) MergeReport {
	var report MergeReport

	for _, instance := range src.Instances {
		if !instance.HoloHosted {
			continue
		}
		dst.Instances = append(dst.Instances, instance.Clone())
		report.CarriedForward = append(report.CarriedForward, instance.ID)
	}

	attachAll(dst, policy, &report)

	logging.Info("Merge", "Carried forward %d instance(s), attached %d", len(report.CarriedForward), len(report.Attached))
	return report
}

func attachAll(cfg *conductor.Configuration, policy AttachmentPolicy, report *MergeReport) {
	for _, instance := range cfg.Instances {
		var target string
		if _, ok := cfg.FindDNA(instance.DNA); instance.HoloHosted && ok {
			target = policy.hostedInterface()
		} else if policy.AttachSelfHosted {
			target = policy.adminInterface()
		} else {
			if instance.HoloHosted {
				logging.Debug("Merge", "Instance %s references unknown dna %s, not attached", instance.ID, instance.DNA)
			}
			continue
		}

		if !attach(cfg, instance.ID, target) {
			logging.Debug("Merge", "Interface %s not found, instance %s not attached", target, instance.ID)
			report.Unattached = append(report.Unattached, instance.ID)
			continue
		}
		report.Attached = append(report.Attached, Attachment{Instance: instance.ID, Interface: target})
	}
}

func attach(cfg *conductor.Configuration, instanceID, interfaceID string) bool {
	iface, ok := cfg.Interface(interfaceID)
	if !ok {
		return false
	}
	iface.Instances = append(iface.Instances, conductor.InstanceReference{ID: instanceID})
	return true
}
