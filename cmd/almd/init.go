package main

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/alium-swap/ledger/app"
	"github.com/alium-swap/ledger/errors"
	"github.com/alium-swap/ledger/x/redistribution"
	"github.com/spf13/cobra"
)

const (
	flagChainID   = "chain-id"
	flagAdmin     = "admin"
	flagDev       = "dev"
	flagRecipient = "recipient"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the configuration and the genesis file",
		Long: `Initialize the configuration and the genesis file in the home directory.
Existing files are left untouched.

Recipients of the redistribution are given as ADDRESS:SHARE_BPS[:MODE],
where MODE is either direct (default) or swap_to_base.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
	cmd.Flags().String(flagChainID, "alm-local", "chain id of the genesis")
	cmd.Flags().String(flagAdmin, "", "administrator address")
	cmd.Flags().String(flagDev, "", "dev fee account, defaults to the redistribution pool")
	cmd.Flags().StringArray(flagRecipient, nil, "redistribution recipient, can be repeated")
	_ = cmd.MarkFlagRequired(flagAdmin)
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	home, err := cmd.Flags().GetString(flagHome)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), "info")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "home: %s", err)
	}

	cfg, err := LoadConfig(home)
	if err != nil {
		return err
	}
	if fileExists(homePath(home, configFile)) {
		logger.Info("Found config file", "path", homePath(home, configFile))
	} else {
		if err := WriteConfig(home, cfg); err != nil {
			return err
		}
		logger.Info("Generated config file", "path", homePath(home, configFile))
	}

	genFile := homePath(home, cfg.GenesisFile)
	if fileExists(genFile) {
		logger.Info("Found genesis file", "path", genFile)
		return nil
	}

	params, err := genesisParams(cmd)
	if err != nil {
		return err
	}
	gen, err := app.NewGenesis(params)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "marshal genesis: %s", err)
	}
	if err := os.WriteFile(genFile, raw, 0o600); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "write genesis: %s", err)
	}
	logger.Info("Generated genesis file", "path", genFile)
	return nil
}

func genesisParams(cmd *cobra.Command) (app.GenesisParams, error) {
	var p app.GenesisParams
	var err error
	if p.ChainID, err = cmd.Flags().GetString(flagChainID); err != nil {
		return p, err
	}
	admin, _ := cmd.Flags().GetString(flagAdmin)
	if p.Admin, err = parseAddress(admin); err != nil {
		return p, errors.Wrap(err, "admin")
	}
	if dev, _ := cmd.Flags().GetString(flagDev); dev != "" {
		if p.DevAccount, err = parseAddress(dev); err != nil {
			return p, errors.Wrap(err, "dev")
		}
	}

	recipients, _ := cmd.Flags().GetStringArray(flagRecipient)
	if len(recipients) == 0 {
		p.Recipients = []redistribution.Recipient{{Account: p.Admin, ShareBps: 10000, Mode: redistribution.Direct}}
		return p, nil
	}
	for _, r := range recipients {
		rc, err := parseRecipient(r)
		if err != nil {
			return p, err
		}
		p.Recipients = append(p.Recipients, rc)
	}
	return p, nil
}

// parseRecipient parses ADDRESS:SHARE_BPS[:MODE]. The address itself may
// contain a colon separated format prefix.
func parseRecipient(s string) (redistribution.Recipient, error) {
	var rc redistribution.Recipient
	chunks := strings.Split(s, ":")
	var mode string
	if n := len(chunks); n >= 3 {
		if _, err := strconv.ParseUint(chunks[n-1], 10, 32); err != nil {
			mode = chunks[n-1]
			chunks = chunks[:n-1]
		}
	}
	if len(chunks) < 2 {
		return rc, errors.Wrapf(errors.ErrInvalidInput, "recipient %q: want ADDRESS:SHARE_BPS[:MODE]", s)
	}
	share, err := strconv.ParseUint(chunks[len(chunks)-1], 10, 32)
	if err != nil {
		return rc, errors.Wrapf(errors.ErrInvalidInput, "recipient %q share: %s", s, err)
	}
	rc.ShareBps = uint32(share)
	if rc.Account, err = parseAddress(strings.Join(chunks[:len(chunks)-1], ":")); err != nil {
		return rc, err
	}
	if mode != "" {
		if err := rc.Mode.UnmarshalJSON([]byte(strconv.Quote(mode))); err != nil {
			return rc, err
		}
	}
	return rc, nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
