package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/rebalancer/config"
	"github.com/rustyeddy/rebalancer/engine"
	"github.com/rustyeddy/rebalancer/state"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or clear the persisted engine state",
	Long: `The engine persists its regime, the stop-loss cooldown ledger and the
sector membership of held symbols between sessions.

Subcommands:
  show   - Print the persisted state
  reset  - Delete the persisted state; the next run starts invested and empty`,
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the persisted state",
	Args:  cobra.NoArgs,
	RunE:  runStateShow,
}

var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the persisted state",
	Args:  cobra.NoArgs,
	RunE:  runStateReset,
}

func init() {
	rootCmd.AddCommand(stateCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)
}

// stateStore is a store that can also be cleared.
type stateStore interface {
	engine.Store
	Reset(ctx context.Context) error
}

func openStateStore(cfg *config.Config) (stateStore, func() error, error) {
	switch cfg.State.Type {
	case "file":
		return state.NewFileStore(cfg.State.Path), func() error { return nil }, nil
	case "sqlite":
		s, err := state.NewSQLiteStore(cfg.State.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open state: %w", err)
		}
		return s, s.Close, nil
	}
	return nil, nil, errors.New("state persistence is disabled (state.type none)")
}

func runStateShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, closeFn, err := openStateStore(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	st, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	printState(cmd.OutOrStdout(), cfg.State.Path, st)
	return nil
}

func printState(w io.Writer, path string, st engine.State) {
	fmt.Fprintf(w, "State:   %s\n", path)
	fmt.Fprintf(w, "Regime:  %s\n", st.Regime)

	fmt.Fprintf(w, "Stop-loss cooldown (%d):\n", st.Ledger.Len())
	for _, e := range st.Ledger.Entries() {
		fmt.Fprintf(w, "  %-8s %3d days\n", e.Symbol, e.Days)
	}

	fmt.Fprintln(w, "Sectors:")
	for _, sector := range st.SectorStocks.Sectors() {
		fmt.Fprintf(w, "  %-24s %s\n", sector, strings.Join(st.SectorStocks[sector], " "))
	}
}

func runStateReset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, closeFn, err := openStateStore(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := store.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("reset state: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ State cleared: %s\n", cfg.State.Path)
	return nil
}
