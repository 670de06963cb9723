package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fake-store/go-client/internal/composition/client"
	"fake-store/go-client/internal/config"
	"fake-store/go-client/internal/domains/session"
	"fake-store/go-client/internal/remote"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const skipRuntime = "skip-runtime"

type app struct {
	configPath string
	baseURL    string
	dataDir    string
	asJSON     bool
	events     bool

	out     io.Writer
	in      io.Reader
	rt      *client.Runtime
	printer *eventPrinter
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", remote.UserMessage(err))
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "storectl",
		Short: "Shop the store service from the terminal",
		Long: `storectl keeps a local session, cart and order list in step with the
store service. The session survives restarts when storage.secret (or
FAKESTORE_SECRET) is set.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to storectl.yaml (optional)")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Store service URL override")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Directory for the encrypted session")
	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Print results as JSON")
	root.PersistentFlags().BoolVar(&a.events, "events", false, "Print store lifecycle events to stderr")

	root.AddCommand(
		signUpCmd(a),
		signInCmd(a),
		signOutCmd(a),
		whoamiCmd(a),
		profileCmd(a),
		productsCmd(a),
		cartCmd(a),
		checkoutCmd(a),
		ordersCmd(a),
		versionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.out = cmd.OutOrStdout()
	a.in = cmd.InOrStdin()
	if cmd.Annotations[skipRuntime] != "" {
		return nil
	}
	cfg, err := config.LoadFromPath(a.configPath)
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.Remote.BaseURL = a.baseURL
	}
	if a.dataDir != "" {
		cfg.Storage.DataDir = a.dataDir
	}
	rt, err := client.Build(client.Options{Config: cfg})
	if err != nil {
		return err
	}
	a.rt = rt
	if a.events {
		a.printer = watchEvents(rt.Hub, cmd.ErrOrStderr())
	}
	return rt.Start(cmd.Context())
}

func (a *app) teardown(ctx context.Context) error {
	if a.rt == nil {
		return nil
	}
	err := a.rt.Close(ctx)
	a.printer.stop()
	return err
}

func (a *app) requireSession() error {
	if !a.rt.Session.IsAuthenticated() {
		return fmt.Errorf("%w: run storectl signin first", session.ErrNotAuthenticated)
	}
	return nil
}

// emit prints v as JSON with --json and runs text otherwise.
func (a *app) emit(v any, text func(w io.Writer)) error {
	if a.asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}
