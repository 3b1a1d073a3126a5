package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"conductorsync/internal/conductor"
	"conductorsync/internal/config"
	"conductorsync/internal/notify"
	"conductorsync/internal/reconciler"
	"conductorsync/pkg/logging"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type reconcileOptions struct {
	root *rootOptions

	input     string
	output    string
	write     bool
	bootstrap bool
	notify    bool

	relocateAll      bool
	naming           string
	attachSelfHosted bool
	parallelism      int
}

func newReconcileCmd(root *rootOptions) *cobra.Command {
	opts := &reconcileOptions{root: root}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Merge state from the persisted conductor config into a new one",
		Long: `Reads a freshly generated conductor configuration (from stdin by default),
loads the configuration persisted in its persistence_dir and reconciles them:

  1. DNA files are copied into <persistence_dir>/dnas and their paths rewritten.
  2. Holo-hosted instances of the persisted configuration are carried forward.
  3. Every instance is re-attached to the hosted interface.

The result is printed to stdout unless --write or --output says otherwise.

Reconcile a destination configuration only once: attachment is append-only
and running it twice on the same output duplicates interface entries.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "-", "New conductor config, - for stdin")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "Where to write the result, - for stdout (ignored with --write unless set)")
	cmd.Flags().BoolVar(&opts.write, "write", false, "Persist the result into persistence_dir")
	cmd.Flags().BoolVar(&opts.bootstrap, "bootstrap", false, "Allow a missing persisted config (first boot)")
	cmd.Flags().BoolVar(&opts.notify, "notify", false, "Publish hosted hApp URLs to the resolver after the run")
	cmd.Flags().BoolVar(&opts.relocateAll, "relocate-all", false, "Relocate every DNA, not only holo-hosted ones")
	cmd.Flags().StringVar(&opts.naming, "naming", "", "Relocated file naming: hash or basename")
	cmd.Flags().BoolVar(&opts.attachSelfHosted, "attach-self-hosted", false, "Attach self-hosted instances to the admin interface")
	cmd.Flags().IntVar(&opts.parallelism, "parallelism", 0, "Number of concurrent DNA copies")

	return cmd
}

// applyFlags lets explicitly set flags override config.yaml.
func (o *reconcileOptions) applyFlags(cmd *cobra.Command, settings *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("relocate-all") {
		if o.relocateAll {
			settings.Relocation.Scope = string(reconciler.ScopeAll)
		} else {
			settings.Relocation.Scope = string(reconciler.ScopeHostedOnly)
		}
	}
	if flags.Changed("naming") {
		settings.Relocation.Naming = o.naming
	}
	if flags.Changed("attach-self-hosted") {
		settings.Attachment.AttachSelfHosted = o.attachSelfHosted
	}
	if flags.Changed("parallelism") {
		settings.Relocation.Parallelism = o.parallelism
	}
	if flags.Changed("notify") {
		settings.Notify.Enabled = o.notify
	}
	return settings.Validate()
}

func runReconcile(cmd *cobra.Command, opts *reconcileOptions) error {
	ctx := cmd.Context()
	runID := uuid.New().String()

	settings, err := config.LoadConfig(opts.root.configPath)
	if err != nil {
		return err
	}
	if err := opts.applyFlags(cmd, &settings); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if !opts.root.debug {
		level, _ := logging.ParseLevel(settings.LogLevel)
		logging.InitForCLI(level, cmd.ErrOrStderr())
	}

	logging.Info("Reconcile", "Starting run %s", runID)

	input, err := readInput(cmd, opts.input)
	if err != nil {
		return err
	}
	next, err := conductor.Parse(string(input))
	if err != nil {
		return fmt.Errorf("input is not a valid conductor config: %w", err)
	}

	storage := config.NewStorage(next.PersistenceDir, settings.Document.FileName)
	previous, err := loadPrevious(storage, opts.bootstrap)
	if err != nil {
		return err
	}

	targetDir := settings.Relocation.Directory
	if !filepath.IsAbs(targetDir) {
		targetDir = filepath.Join(next.PersistenceDir, targetDir)
	}

	report, err := reconciler.New(settings.Policy()).Reconcile(ctx, next, previous, targetDir)
	if err != nil {
		var ioErr *reconciler.IoError
		if errors.As(err, &ioErr) {
			return fmt.Errorf("failed to copy DNAs to %s: %w", targetDir, err)
		}
		return fmt.Errorf("reconcile failed: %w", err)
	}

	text, err := next.Serialize()
	if err != nil {
		return err
	}

	if opts.write {
		if err := storage.Save([]byte(text)); err != nil {
			return err
		}
	}
	switch {
	case opts.output == "-" && opts.write && !cmd.Flags().Changed("output"):
	case opts.output == "-":
		if _, err := fmt.Fprint(cmd.OutOrStdout(), text); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	case opts.output != "":
		if err := os.WriteFile(opts.output, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write result to %s: %w", opts.output, err)
		}
	}

	if settings.Notify.Enabled {
		resolver := notify.NewResolver(notify.Options{
			URL:        settings.Notify.URL,
			Retries:    settings.Notify.Retries,
			RetryDelay: settings.Notify.RetryDelay,
			Timeout:    settings.Notify.Timeout,
		})
		if err := resolver.UpdateHosts(ctx, next.HostedHappURLs()); err != nil {
			logging.Warn("Reconcile", "Resolver update failed, continuing: %v", err)
		}
	}

	logging.Info("Reconcile", "Run %s done: %d DNA(s) relocated, %d instance(s) carried forward, %d attachment(s)",
		runID, len(report.Relocation.Relocated), len(report.Merge.CarriedForward), len(report.Merge.Attached))
	return nil
}

func readInput(cmd *cobra.Command, input string) ([]byte, error) {
	if input == "" || input == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", input, err)
	}
	return data, nil
}

func loadPrevious(storage *config.Storage, bootstrap bool) (*conductor.Configuration, error) {
	data, err := storage.Load()
	if err != nil {
		if bootstrap && errors.Is(err, config.ErrDocumentNotFound) {
			logging.Info("Reconcile", "No persisted config at %s, bootstrapping", storage.Path())
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read old config file: %w", err)
	}

	previous, err := conductor.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse old config %s: %w", storage.Path(), err)
	}
	return previous, nil
}
