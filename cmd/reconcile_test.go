package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"conductorsync/internal/conductor"
	"conductorsync/internal/config"
	"conductorsync/internal/reconciler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const previousDocument = `persistence_dir = %q

[[dnas]]
id = "chat"
file = %q
hash = "QmChat"
holo-hosted = true
happ-url = "chat.holo.host"

[[instances]]
id = "chat::alice"
dna = "chat"
holo-hosted = true

[[interfaces]]
id = "hosted-interface"

  [[interfaces.instances]]
  id = "chat::alice"
`

const nextDocument = `persistence_dir = %q

[[dnas]]
id = "chat"
file = %q
hash = "QmChat"
holo-hosted = true
happ-url = "chat.holo.host"

[[dnas]]
id = "store"
file = "/nix/store/store.dna.json"

[[instances]]
id = "store"
dna = "store"

[[interfaces]]
id = "admin-interface"

[[interfaces]]
id = "hosted-interface"
`

type reconcileFixture struct {
	persistence string
	configDir   string
	dnaFile     string
}

func newReconcileFixture(t *testing.T, withPrevious bool) reconcileFixture {
	t.Helper()

	f := reconcileFixture{
		persistence: t.TempDir(),
		configDir:   t.TempDir(),
	}
	f.dnaFile = filepath.Join(t.TempDir(), "chat.dna.json")
	require.NoError(t, os.WriteFile(f.dnaFile, []byte(`{"name":"chat"}`), 0644))

	if withPrevious {
		storage := config.NewStorage(f.persistence, "")
		require.NoError(t, storage.Save([]byte(fmt.Sprintf(previousDocument, f.persistence, f.dnaFile))))
	}
	return f
}

func (f reconcileFixture) input() string {
	return fmt.Sprintf(nextDocument, f.persistence, f.dnaFile)
}

func (f reconcileFixture) writeToolConfig(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.configDir, "config.yaml"), []byte(content), 0644))
}

func TestReconcileCommand_Stdout(t *testing.T) {
	f := newReconcileFixture(t, true)

	stdout, _, err := executeCommand(t, f.input(), "reconcile", "--config-path", f.configDir)
	require.NoError(t, err)

	result, err := conductor.Parse(stdout)
	require.NoError(t, err)

	require.Len(t, result.Instances, 2)
	assert.Equal(t, "chat::alice", result.Instances[1].ID)

	hosted, ok := result.Interface(reconciler.HostedInterfaceID)
	require.True(t, ok)
	require.Len(t, hosted.Instances, 1)
	assert.Equal(t, "chat::alice", hosted.Instances[0].ID)

	relocated := filepath.Join(f.persistence, "dnas", "QmChat.dna.json")
	assert.Equal(t, relocated, result.DNAs[0].File)
	assert.Equal(t, "/nix/store/store.dna.json", result.DNAs[1].File, "self-hosted DNAs stay in place")
	assert.FileExists(t, relocated)

	persisted, err := os.ReadFile(filepath.Join(f.persistence, config.DefaultDocumentFileName))
	require.NoError(t, err)
	assert.NotContains(t, string(persisted), "admin-interface", "without --write the persisted document is untouched")
}

func TestReconcileCommand_Write(t *testing.T) {
	f := newReconcileFixture(t, true)

	stdout, _, err := executeCommand(t, f.input(), "reconcile", "--config-path", f.configDir, "--write")
	require.NoError(t, err)
	assert.Empty(t, stdout)

	persisted, err := os.ReadFile(filepath.Join(f.persistence, config.DefaultDocumentFileName))
	require.NoError(t, err)

	result, err := conductor.Parse(string(persisted))
	require.NoError(t, err)
	assert.Len(t, result.Instances, 2)
	_, ok := result.Interface(reconciler.AdminInterfaceID)
	assert.True(t, ok)
}

func TestReconcileCommand_InputAndOutputFiles(t *testing.T) {
	f := newReconcileFixture(t, true)

	inputPath := filepath.Join(t.TempDir(), "next.toml")
	require.NoError(t, os.WriteFile(inputPath, []byte(f.input()), 0644))
	outputPath := filepath.Join(t.TempDir(), "out.toml")

	stdout, _, err := executeCommand(t, "", "reconcile", "--config-path", f.configDir,
		"--input", inputPath, "--output", outputPath)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	result, err := conductor.Parse(string(data))
	require.NoError(t, err)
	assert.Len(t, result.Instances, 2)
}

func TestReconcileCommand_MissingPrevious(t *testing.T) {
	f := newReconcileFixture(t, false)

	_, _, err := executeCommand(t, f.input(), "reconcile", "--config-path", f.configDir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrDocumentNotFound))
	assert.Contains(t, err.Error(), "failed to read old config file")
}

func TestReconcileCommand_Bootstrap(t *testing.T) {
	f := newReconcileFixture(t, false)

	stdout, _, err := executeCommand(t, f.input(), "reconcile", "--config-path", f.configDir, "--bootstrap")
	require.NoError(t, err)

	result, err := conductor.Parse(stdout)
	require.NoError(t, err)
	assert.Len(t, result.Instances, 1)
	assert.Equal(t, filepath.Join(f.persistence, "dnas", "QmChat.dna.json"), result.DNAs[0].File)
}

func TestReconcileCommand_FlagOverrides(t *testing.T) {
	f := newReconcileFixture(t, true)
	storeFile := filepath.Join(t.TempDir(), "store.dna.json")
	require.NoError(t, os.WriteFile(storeFile, []byte(`{"name":"store"}`), 0644))

	input := strings.Replace(f.input(), "/nix/store/store.dna.json", storeFile, 1)

	stdout, _, err := executeCommand(t, input, "reconcile", "--config-path", f.configDir,
		"--relocate-all", "--naming", "basename", "--attach-self-hosted")
	require.NoError(t, err)

	result, err := conductor.Parse(stdout)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.persistence, "dnas", "chat.dna.json"), result.DNAs[0].File)
	assert.Equal(t, filepath.Join(f.persistence, "dnas", "store.dna.json"), result.DNAs[1].File)

	admin, ok := result.Interface(reconciler.AdminInterfaceID)
	require.True(t, ok)
	require.Len(t, admin.Instances, 1)
	assert.Equal(t, "store", admin.Instances[0].ID)
}

func TestReconcileCommand_InvalidNamingFlag(t *testing.T) {
	f := newReconcileFixture(t, true)

	_, _, err := executeCommand(t, f.input(), "reconcile", "--config-path", f.configDir, "--naming", "random")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid flags")
}

func TestReconcileCommand_MalformedInput(t *testing.T) {
	f := newReconcileFixture(t, true)

	_, _, err := executeCommand(t, "[[dnas]\nid = ", "reconcile", "--config-path", f.configDir)
	require.Error(t, err)
	assert.Equal(t, ExitCodeFormat, getExitCode(err))
}

func TestReconcileCommand_MalformedToolConfig(t *testing.T) {
	f := newReconcileFixture(t, true)
	f.writeToolConfig(t, "relocation: [")

	_, _, err := executeCommand(t, f.input(), "reconcile", "--config-path", f.configDir)
	require.Error(t, err)
	assert.Equal(t, ExitCodeFormat, getExitCode(err))
}

func TestReconcileCommand_MissingDNAFile(t *testing.T) {
	f := newReconcileFixture(t, true)
	require.NoError(t, os.Remove(f.dnaFile))

	_, _, err := executeCommand(t, f.input(), "reconcile", "--config-path", f.configDir)
	require.Error(t, err)
	assert.Equal(t, ExitCodeIO, getExitCode(err))
}

func TestReconcileCommand_MissingDNAFileMessage(t *testing.T) {
	f := newReconcileFixture(t, true)
	require.NoError(t, os.Remove(f.dnaFile))

	_, _, err := executeCommand(t, f.input(), "reconcile", "--config-path", f.configDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to copy DNAs to "+filepath.Join(f.persistence, "dnas"))
}

func TestReconcileCommand_NonCopyFailure(t *testing.T) {
	f := newReconcileFixture(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(bytes.NewBufferString(f.input()))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"reconcile", "--config-path", f.configDir})

	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Contains(t, err.Error(), "reconcile failed")
	assert.NotContains(t, err.Error(), "failed to copy DNAs")
	assert.Equal(t, ExitCodeError, getExitCode(err))
	assert.Empty(t, stdout.String())
}

func TestReconcileCommand_Notify(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := newReconcileFixture(t, true)
	f.writeToolConfig(t, fmt.Sprintf("notify:\n  url: %s\n  retries: 0\n", server.URL))

	_, _, err := executeCommand(t, f.input(), "reconcile", "--config-path", f.configDir, "--notify")
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load())
}

func TestReconcileCommand_NotifyFailureIsNotFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	f := newReconcileFixture(t, true)
	f.writeToolConfig(t, fmt.Sprintf("notify:\n  enabled: true\n  url: %s\n  retries: 0\n", server.URL))

	_, stderr, err := executeCommand(t, f.input(), "reconcile", "--config-path", f.configDir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Resolver update failed")
}
