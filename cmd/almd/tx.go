package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alium-swap/ledger"
	"github.com/alium-swap/ledger/amount"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/x/redistribution"
	"github.com/spf13/cobra"
)

func newIssueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "issue TOKEN ADMIN TO AMOUNT",
		Short: "Mint new tokens, signed by the token admin",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := parseAddresses(args[1:3]...)
			if err != nil {
				return err
			}
			amt, err := amount.Parse(args[3])
			if err != nil {
				return err
			}
			return update(cmd, func(n *node, ctx context.Context, db ledger.KVCacheWrap) error {
				l, err := n.app.Token(args[0])
				if err != nil {
					return err
				}
				return l.Mint(ctx, db, addrs[0], addrs[1], amt)
			})
		},
	}
}

func newTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer TOKEN FROM TO AMOUNT",
		Short: "Transfer tokens, applying the fees of the token",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := parseAddresses(args[1:3]...)
			if err != nil {
				return err
			}
			amt, err := amount.Parse(args[3])
			if err != nil {
				return err
			}
			return update(cmd, func(n *node, ctx context.Context, db ledger.KVCacheWrap) error {
				l, err := n.app.Token(args[0])
				if err != nil {
					return err
				}
				_, err = l.Transfer(ctx, db, addrs[0], addrs[1], amt)
				return err
			})
		},
	}
}

func newApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve TOKEN OWNER SPENDER AMOUNT",
		Short: "Allow the spender to transfer tokens of the owner",
		Long:  `Allow the spender to transfer tokens of the owner. Use "max" for an unlimited allowance.`,
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := parseAddresses(args[1:3]...)
			if err != nil {
				return err
			}
			amt := amount.Max()
			if args[3] != "max" {
				if amt, err = amount.Parse(args[3]); err != nil {
					return err
				}
			}
			return update(cmd, func(n *node, ctx context.Context, db ledger.KVCacheWrap) error {
				l, err := n.app.Token(args[0])
				if err != nil {
					return err
				}
				return l.Approve(ctx, db, addrs[0], addrs[1], amt)
			})
		},
	}
}

func newReleaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Release the redistribution pool now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var run *redistribution.Run
			err := update(cmd, func(n *node, ctx context.Context, db ledger.KVCacheWrap) error {
				var err error
				run, err = n.app.Redistributor.Release(ctx, db)
				return err
			})
			if err != nil {
				return err
			}
			// Events are printed when the update commits, the summary follows them.
			fmt.Fprintf(cmd.OutOrStdout(), "released %s of %s, %d failed\n", run.Distributed.Format(), run.Gross.Format(), run.Failures)
			return nil
		},
	}
}

func newMintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mint CALLER COUNT",
		Short: "Buy COUNT SALM tokens from the mint curve",
		Long: `Buy COUNT SALM tokens from the mint curve. The caller must have approved
the curve account to spend the ALM price, see mint-price.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			count, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return errors.Wrapf(errors.ErrInvalidInput, "count: %s", err)
			}
			var price amount.Amount
			err = update(cmd, func(n *node, ctx context.Context, db ledger.KVCacheWrap) error {
				var err error
				price, err = n.app.Curve.Mint(ctx, db, caller, count)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "paid %s ALM\n", price.Format())
			return nil
		},
	}
}

func newBurnSALMCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "burn-salm CALLER AMOUNT",
		Short: "Destroy SALM tokens of the caller without refund",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			amt, err := amount.Parse(args[1])
			if err != nil {
				return err
			}
			return update(cmd, func(n *node, ctx context.Context, db ledger.KVCacheWrap) error {
				return n.app.Curve.Burn(ctx, db, caller, amt)
			})
		},
	}
}

func newFeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "Switch the ALM transfer fees on or off",
	}
	for _, enable := range []bool{true, false} {
		enable := enable
		use := "disable ADMIN"
		if enable {
			use = "enable ADMIN"
		}
		cmd.AddCommand(&cobra.Command{
			Use:  use,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				admin, err := parseAddress(args[0])
				if err != nil {
					return err
				}
				return update(cmd, func(n *node, ctx context.Context, db ledger.KVCacheWrap) error {
					if enable {
						return n.app.ALM.EnableAllFees(ctx, db, admin)
					}
					return n.app.ALM.DisableAllFees(ctx, db, admin)
				})
			},
		})
	}
	return cmd
}

func newLiquidityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "liquidity PROVIDER ALM_AMOUNT BASE_AMOUNT",
		Short: "Deposit both assets into the exchange pair",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			tok, err := amount.Parse(args[1])
			if err != nil {
				return errors.Wrap(err, "alm amount")
			}
			base, err := amount.Parse(args[2])
			if err != nil {
				return errors.Wrap(err, "base amount")
			}
			return update(cmd, func(n *node, ctx context.Context, db ledger.KVCacheWrap) error {
				return n.app.Router.AddLiquidity(ctx, db, provider, tok, base)
			})
		},
	}
}

func parseAddresses(raw ...string) ([]ledger.Address, error) {
	addrs := make([]ledger.Address, len(raw))
	for i, s := range raw {
		a, err := parseAddress(s)
		if err != nil {
			return nil, err
		}
		addrs[i] = a
	}
	return addrs, nil
}
