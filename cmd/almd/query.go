package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
	"github.com/spf13/cobra"
)

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance TOKEN ADDRESS",
		Short: "Print the balance of an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress(args[1])
			if err != nil {
				return err
			}
			return view(cmd, func(n *node, db ledger.ReadOnlyKVStore) error {
				l, err := n.app.Token(args[0])
				if err != nil {
					return err
				}
				bal, err := l.BalanceOf(db, addr)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bal.Format(), l.Ticker())
				return nil
			})
		},
	}
}

func newEstimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate FROM TO AMOUNT",
		Short: "Print how many ALM tokens the recipient of a transfer would receive",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			to, err := parseAddress(args[1])
			if err != nil {
				return err
			}
			amt, err := amount.Parse(args[2])
			if err != nil {
				return err
			}
			return view(cmd, func(n *node, db ledger.ReadOnlyKVStore) error {
				est, err := n.app.ALM.EstimateOutput(db, from, to, amt)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "amount out: %s\n", est.AmountOut.Format())
				fmt.Fprintf(out, "dev fee:    %s\n", est.DevFee.Format())
				fmt.Fprintf(out, "burn fee:   %s\n", est.BurnFee.Format())
				fmt.Fprintf(out, "excluded:   %s\n", est.Excluded.Format())
				return nil
			})
		},
	}
}

func newMintPriceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mint-price COUNT",
		Short: "Print the ALM price of minting COUNT SALM tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return errors.Wrapf(errors.ErrInvalidInput, "count: %s", err)
			}
			return view(cmd, func(n *node, db ledger.ReadOnlyKVStore) error {
				price, err := n.app.Curve.CountMintPrice(db, count)
				if err != nil {
					return err
				}
				minted, err := n.app.Curve.MintedCount(db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s ALM (minted so far: %d)\n", price.Format(), minted)
				return nil
			})
		},
	}
}

func newErrorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "errors",
		Short: "Print the redistribution errors counter and the last release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return view(cmd, func(n *node, db ledger.ReadOnlyKVStore) error {
				count, err := n.app.Redistributor.ErrorsCounter(db)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "errors: %d\n", count)

				run, err := n.app.Redistributor.LastRun(db)
				switch {
				case errors.ErrNotFound.Is(err):
					return nil
				case err != nil:
					return err
				}
				fmt.Fprintf(out, "last release %s: gross %s, distributed %s\n", run.ID, run.Gross.Format(), run.Distributed.Format())
				for _, p := range run.Payouts {
					if p.Failed() {
						fmt.Fprintf(out, "  %s %s failed: %s\n", p.Recipient, p.Mode, p.Error)
						continue
					}
					fmt.Fprintf(out, "  %s %s owed %s delivered %s\n", p.Recipient, p.Mode, p.Owed.Format(), p.Delivered.Format())
				}
				return nil
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset ADMIN",
		Short: "Reset the redistribution errors counter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			return update(cmd, func(n *node, ctx context.Context, db ledger.KVCacheWrap) error {
				return n.app.Redistributor.ResetErrorsCounter(ctx, db, admin)
			})
		},
	})
	return cmd
}
