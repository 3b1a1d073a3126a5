package reconciler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"conductorsync/internal/conductor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDNA creates a DNA source file and returns its path.
func writeDNA(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o444))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRelocate_ContentHashNaming(t *testing.T) {
	store := t.TempDir()
	target := filepath.Join(t.TempDir(), "dnas")
	src := writeDNA(t, store, "nix/holochat.dna.json", `{"name":"holochat"}`)

	cfg := &conductor.Configuration{
		PersistenceDir: "/p",
		DNAs:           []conductor.DNA{{ID: "dna1", File: src, Hash: "abc123", HoloHosted: true}},
	}

	report, err := Relocate(context.Background(), cfg, target, DefaultPolicy().Relocation)
	require.NoError(t, err)

	assert.Equal(t, "abc123.dna.json", filepath.Base(cfg.DNAs[0].File))
	assert.Equal(t, filepath.Join(target, "abc123.dna.json"), cfg.DNAs[0].File)
	assert.Equal(t, `{"name":"holochat"}`, readFile(t, cfg.DNAs[0].File))
	assert.Equal(t, []Relocation{{DNA: "dna1", From: src, To: cfg.DNAs[0].File}}, report.Relocated)
	assert.Equal(t, `{"name":"holochat"}`, readFile(t, src), "source must be left intact")
}

func TestRelocate_HashNamingFallsBackToBasename(t *testing.T) {
	store := t.TempDir()
	target := filepath.Join(t.TempDir(), "dnas")
	src := writeDNA(t, store, "holochat.dna.json", "dna")

	cfg := &conductor.Configuration{
		DNAs: []conductor.DNA{{ID: "dna1", File: src, HoloHosted: true}},
	}

	_, err := Relocate(context.Background(), cfg, target, DefaultPolicy().Relocation)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(target, "holochat.dna.json"), cfg.DNAs[0].File)
}

func TestRelocate_SkipsSelfHostedDNAs(t *testing.T) {
	store := t.TempDir()
	target := filepath.Join(t.TempDir(), "dnas")
	hosted := writeDNA(t, store, "hosted.dna.json", "hosted")
	selfHosted := writeDNA(t, store, "store.dna.json", "store")

	cfg := &conductor.Configuration{
		DNAs: []conductor.DNA{
			{ID: "happ-store", File: selfHosted, Hash: "QmStore"},
			{ID: "hosted", File: hosted, Hash: "QmHosted", HoloHosted: true},
		},
	}

	report, err := Relocate(context.Background(), cfg, target, DefaultPolicy().Relocation)
	require.NoError(t, err)

	assert.Equal(t, selfHosted, cfg.DNAs[0].File)
	assert.Equal(t, filepath.Join(target, "QmHosted.dna.json"), cfg.DNAs[1].File)
	assert.Equal(t, []string{"happ-store"}, report.Skipped)
	assert.NoFileExists(t, filepath.Join(target, "QmStore.dna.json"))
}

func TestRelocate_ScopeAllWithBasenames(t *testing.T) {
	store := t.TempDir()
	target := filepath.Join(t.TempDir(), "dnas")
	a := writeDNA(t, store, "a/happ-store.dna.json", "store")
	b := writeDNA(t, store, "b/holochat.dna.json", "chat")

	cfg := &conductor.Configuration{
		DNAs: []conductor.DNA{
			{ID: "happ-store", File: a, Hash: "QmStore"},
			{ID: "holochat", File: b, Hash: "QmChat", HoloHosted: true},
		},
	}

	policy := RelocationPolicy{Scope: ScopeAll, Naming: NamingBasename}
	report, err := Relocate(context.Background(), cfg, target, policy)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(target, "happ-store.dna.json"), cfg.DNAs[0].File)
	assert.Equal(t, filepath.Join(target, "holochat.dna.json"), cfg.DNAs[1].File)
	assert.Equal(t, "store", readFile(t, cfg.DNAs[0].File))
	assert.Equal(t, "chat", readFile(t, cfg.DNAs[1].File))
	assert.Len(t, report.Relocated, 2)
	assert.Empty(t, report.Skipped)
}

func TestRelocate_ParallelCopies(t *testing.T) {
	store := t.TempDir()
	target := filepath.Join(t.TempDir(), "dnas")

	cfg := &conductor.Configuration{}
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		src := writeDNA(t, store, id+".dna.json", "content-"+id)
		cfg.DNAs = append(cfg.DNAs, conductor.DNA{ID: id, File: src, Hash: "Qm" + id, HoloHosted: true})
	}

	policy := DefaultPolicy().Relocation
	policy.Parallelism = 3
	_, err := Relocate(context.Background(), cfg, target, policy)
	require.NoError(t, err)

	for _, dna := range cfg.DNAs {
		assert.Equal(t, filepath.Join(target, "Qm"+dna.ID+".dna.json"), dna.File)
		assert.Equal(t, "content-"+dna.ID, readFile(t, dna.File))
	}
}

func TestRelocate_ExistingTargetAndOverwrite(t *testing.T) {
	store := t.TempDir()
	target := t.TempDir()
	src := writeDNA(t, store, "chat.dna.json", "fresh")
	require.NoError(t, os.WriteFile(filepath.Join(target, "abc123.dna.json"), []byte("stale"), 0o444))

	cfg := &conductor.Configuration{
		DNAs: []conductor.DNA{{ID: "dna1", File: src, Hash: "abc123", HoloHosted: true}},
	}

	_, err := Relocate(context.Background(), cfg, target, DefaultPolicy().Relocation)
	require.NoError(t, err)
	assert.Equal(t, "fresh", readFile(t, cfg.DNAs[0].File))
}

func TestRelocate_AlreadyInPlace(t *testing.T) {
	target := t.TempDir()
	inPlace := writeDNA(t, target, "abc123.dna.json", "keep me")

	cfg := &conductor.Configuration{
		DNAs: []conductor.DNA{{ID: "dna1", File: inPlace, Hash: "abc123", HoloHosted: true}},
	}

	_, err := Relocate(context.Background(), cfg, target, DefaultPolicy().Relocation)
	require.NoError(t, err)
	assert.Equal(t, inPlace, cfg.DNAs[0].File)
	assert.Equal(t, "keep me", readFile(t, inPlace))
}

func TestRelocate_SharedSourceCopiedOnce(t *testing.T) {
	store := t.TempDir()
	target := t.TempDir()
	src := writeDNA(t, store, "chat.dna.json", "chat")

	cfg := &conductor.Configuration{
		DNAs: []conductor.DNA{
			{ID: "chat-a", File: src, HoloHosted: true},
			{ID: "chat-b", File: src, HoloHosted: true},
		},
	}

	report, err := Relocate(context.Background(), cfg, target, DefaultPolicy().Relocation)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(target, "chat.dna.json"), cfg.DNAs[0].File)
	assert.Equal(t, cfg.DNAs[0].File, cfg.DNAs[1].File)
	assert.Len(t, report.Relocated, 2)
}

func TestRelocate_Errors(t *testing.T) {
	store := t.TempDir()
	collidingA := writeDNA(t, store, "a/chat.dna.json", "a")
	collidingB := writeDNA(t, store, "b/chat.dna.json", "b")

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	tests := []struct {
		name      string
		dnas      []conductor.DNA
		targetDir string
		policy    RelocationPolicy
		wantOp    Op
		wantDNA   string
	}{
		{
			name:    "missing source",
			dnas:    []conductor.DNA{{ID: "gone", File: filepath.Join(store, "gone.dna.json"), HoloHosted: true}},
			policy:  DefaultPolicy().Relocation,
			wantOp:  OpRead,
			wantDNA: "gone",
		},
		{
			name:      "target is a file",
			dnas:      []conductor.DNA{{ID: "a", File: collidingA, HoloHosted: true}},
			targetDir: filepath.Join(blocker, "dnas"),
			policy:    DefaultPolicy().Relocation,
			wantOp:    OpCreateDir,
		},
		{
			name: "colliding basenames",
			dnas: []conductor.DNA{
				{ID: "a", File: collidingA, HoloHosted: true},
				{ID: "b", File: collidingB, HoloHosted: true},
			},
			policy:  RelocationPolicy{Scope: ScopeHostedOnly, Naming: NamingBasename},
			wantOp:  OpPlan,
			wantDNA: "b",
		},
		{
			name:    "no file name",
			dnas:    []conductor.DNA{{ID: "root", File: "/", HoloHosted: true}},
			policy:  DefaultPolicy().Relocation,
			wantOp:  OpName,
			wantDNA: "root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.targetDir
			if target == "" {
				target = t.TempDir()
			}
			cfg := &conductor.Configuration{DNAs: tt.dnas}
			before := cfg.Clone()

			_, err := Relocate(context.Background(), cfg, target, tt.policy)
			require.Error(t, err)

			var ioErr *IoError
			require.True(t, errors.As(err, &ioErr), "expected *IoError, got %T", err)
			assert.Equal(t, tt.wantOp, ioErr.Op)
			assert.Equal(t, tt.wantDNA, ioErr.DNA)
			assert.True(t, before.Equal(cfg), "failed relocation must not touch the document")
		})
	}
}

func TestRelocate_IoErrorNamesPaths(t *testing.T) {
	src := filepath.Join(t.TempDir(), "missing.dna.json")
	target := t.TempDir()
	cfg := &conductor.Configuration{
		DNAs: []conductor.DNA{{ID: "dna1", File: src, Hash: "abc123", HoloHosted: true}},
	}

	_, err := Relocate(context.Background(), cfg, target, DefaultPolicy().Relocation)
	require.Error(t, err)
	assert.Contains(t, err.Error(), src)
	assert.Contains(t, err.Error(), filepath.Join(target, "abc123.dna.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRelocate_CancelledContext(t *testing.T) {
	store := t.TempDir()
	src := writeDNA(t, store, "chat.dna.json", "chat")
	cfg := &conductor.Configuration{
		DNAs: []conductor.DNA{{ID: "dna1", File: src, HoloHosted: true}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Relocate(ctx, cfg, t.TempDir(), DefaultPolicy().Relocation)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, src, cfg.DNAs[0].File)
}
