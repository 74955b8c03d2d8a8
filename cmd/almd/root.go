package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/app"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/store"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagHome     = "home"
	flagLogLevel = "log-level"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "almd",
		Short:        "ALM fee token ledger",
		SilenceUsage: true,
	}
	root.PersistentFlags().String(flagHome, filepath.Join(os.ExpandEnv("$HOME"), ".almd"), "directory to store files under")
	root.PersistentFlags().String(flagLogLevel, "", "log level, overrides the configuration")

	root.AddCommand(
		newInitCmd(),
		newStartCmd(),
		newVersionCmd(),
		newBalanceCmd(),
		newEstimateCmd(),
		newMintPriceCmd(),
		newErrorsCmd(),
		newIssueCmd(),
		newTransferCmd(),
		newApproveCmd(),
		newReleaseCmd(),
		newMintCmd(),
		newBurnSALMCmd(),
		newFeesCmd(),
		newLiquidityCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), ledger.Version())
		},
	}
}

// node is an opened database with the application on top of it.
type node struct {
	home   string
	cfg    Config
	logger log.Logger
	db     *store.BoltStore
	app    *app.App
}

// openNode opens the database in the home directory and loads the genesis
// if the database is empty.
func openNode(cmd *cobra.Command, opts ...app.Option) (*node, error) {
	home, err := cmd.Flags().GetString(flagHome)
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(home)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString(flagLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := store.OpenBolt(homePath(home, cfg.DBFile))
	if err != nil {
		return nil, err
	}
	opts = append([]app.Option{app.WithLogger(logger)}, opts...)
	n := &node{
		home:   home,
		cfg:    cfg,
		logger: logger,
		db:     db,
		app:    app.New(store.BTreeCacheable{KVStore: db}, opts...),
	}
	if err := n.ensureGenesis(cmd.Context()); err != nil {
		db.Close()
		return nil, err
	}
	return n, nil
}

func (n *node) ensureGenesis(ctx context.Context) error {
	id, err := n.app.ChainID()
	if err != nil {
		return err
	}
	if id != "" {
		return nil
	}
	gen, err := app.LoadGenesis(homePath(n.home, n.cfg.GenesisFile))
	if err != nil {
		return errors.Wrap(err, "run init first")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return n.app.InitChain(ctx, gen)
}

func (n *node) Close() error {
	return n.db.Close()
}

func newLogger(w io.Writer, level string) (log.Logger, error) {
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "log level: %s", err)
	}
	return log.NewFilter(log.NewTMLogger(log.NewSyncWriter(w)), opt), nil
}

// update runs fn in a single atomic operation and prints the emitted events.
func update(cmd *cobra.Command, fn func(n *node, ctx context.Context, db ledger.KVCacheWrap) error) error {
	n, err := openNode(cmd, app.WithEventSink(eventPrinter{w: cmd.OutOrStdout()}))
	if err != nil {
		return err
	}
	defer n.Close()
	return n.app.Update(context.Background(), func(ctx context.Context, db ledger.KVCacheWrap) error {
		return fn(n, ctx, db)
	})
}

// view runs fn with a read access to the database.
func view(cmd *cobra.Command, fn func(n *node, db ledger.ReadOnlyKVStore) error) error {
	n, err := openNode(cmd)
	if err != nil {
		return err
	}
	defer n.Close()
	return n.app.View(func(db ledger.ReadOnlyKVStore) error {
		return fn(n, db)
	})
}

// eventPrinter writes every event as a line of JSON prefixed with its name.
type eventPrinter struct {
	w io.Writer
}

func (p eventPrinter) Emit(e ledger.Event) {
	raw, err := json.Marshal(e)
	if err != nil {
		fmt.Fprintf(p.w, "%s %+v\n", e.EventName(), e)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", e.EventName(), raw)
}

func parseAddress(s string) (ledger.Address, error) {
	a, err := ledger.ParseAddress(s)
	if err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, errors.Wrapf(err, "address %q", s)
	}
	return a, nil
}
