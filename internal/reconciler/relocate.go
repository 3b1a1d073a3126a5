package reconciler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"conductorsync/internal/conductor"
	"conductorsync/pkg/logging"

	"golang.org/x/sync/errgroup"
)

type copyJob struct {
	indexes []int
	dna     string
	from    string
	to      string
}

// Relocate copies the DNA files selected by policy into targetDir and points
// each DNA's File at its copy.
//
// targetDir is created when missing. Existing destination files are
// overwritten. cfg is only modified once every copy has succeeded.
func Relocate(ctx context.Context, cfg *conductor.Configuration, targetDir string, policy RelocationPolicy) (RelocationReport, error) {
	var report RelocationReport

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return report, &IoError{Op: OpCreateDir, Destination: targetDir, Err: err}
	}

	jobs, skipped, err := planRelocation(cfg, targetDir, policy)
	if err != nil {
		return report, err
	}
	report.Skipped = skipped

	parallelism := policy.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return copyDNA(job)
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	for _, job := range jobs {
		for _, i := range job.indexes {
			report.Relocated = append(report.Relocated, Relocation{
				DNA:  cfg.DNAs[i].ID,
				From: cfg.DNAs[i].File,
				To:   job.to,
			})
			cfg.DNAs[i].File = job.to
		}
		logging.Debug("Relocate", "Copied %s to %s", job.from, job.to)
	}

	logging.Info("Relocate", "Relocated %d DNA(s) into %s, left %d in place", len(report.Relocated), targetDir, len(report.Skipped))
	return report, nil
}

// planRelocation groups DNAs by destination. DNAs sharing a source file share
// one copy; two different sources mapping onto one destination is an error.
func planRelocation(cfg *conductor.Configuration, targetDir string, policy RelocationPolicy) ([]*copyJob, []string, error) {
	var jobs []*copyJob
	var skipped []string
	byDestination := make(map[string]*copyJob)

	for i, dna := range cfg.DNAs {
		if policy.Scope != ScopeAll && !dna.HoloHosted {
			skipped = append(skipped, dna.ID)
			continue
		}

		name, err := destinationName(dna, policy.Naming)
		if err != nil {
			return nil, nil, &IoError{Op: OpName, DNA: dna.ID, Source: dna.File, Err: err}
		}
		to := filepath.Join(targetDir, name)

		if job, ok := byDestination[to]; ok {
			if filepath.Clean(job.from) != filepath.Clean(dna.File) {
				return nil, nil, &IoError{
					Op:          OpPlan,
					DNA:         dna.ID,
					Source:      dna.File,
					Destination: to,
					Err:         fmt.Errorf("destination already claimed by dna %s (%s)", job.dna, job.from),
				}
			}
			job.indexes = append(job.indexes, i)
			continue
		}

		job := &copyJob{indexes: []int{i}, dna: dna.ID, from: dna.File, to: to}
		byDestination[to] = job
		jobs = append(jobs, job)
	}
	return jobs, skipped, nil
}

func destinationName(dna conductor.DNA, naming Naming) (string, error) {
	if naming != NamingBasename && dna.Hash != "" {
		if filepath.Base(dna.Hash) != dna.Hash {
			return "", fmt.Errorf("hash %q cannot be used as a file name", dna.Hash)
		}
		return dna.Hash + DNAFileSuffix, nil
	}

	base := filepath.Base(dna.File)
	switch base {
	case ".", "..", string(filepath.Separator):
		return "", errors.New("path has no file name")
	}
	return base, nil
}

func copyDNA(job *copyJob) error {
	fail := func(op Op, err error) error {
		return &IoError{Op: op, DNA: job.dna, Source: job.from, Destination: job.to, Err: err}
	}

	srcInfo, err := os.Stat(job.from)
	if err != nil {
		return fail(OpRead, err)
	}
	if dstInfo, err := os.Stat(job.to); err == nil {
		if os.SameFile(srcInfo, dstInfo) {
			// Already in place from an earlier run; truncating would destroy it.
			return nil
		}
		// Earlier runs may have left a read-only copy behind.
		if dstInfo.Mode().Perm()&0o200 == 0 {
			if err := os.Chmod(job.to, 0o644); err != nil {
				return fail(OpWrite, err)
			}
		}
	}

	src, err := os.Open(job.from)
	if err != nil {
		return fail(OpRead, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(job.to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fail(OpWrite, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fail(OpCopy, err)
	}
	if err := dst.Close(); err != nil {
		return fail(OpWrite, err)
	}
	return nil
}
