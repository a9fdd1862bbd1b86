package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-receipts-must-flow/internal/cli"
	"github.com/Veraticus/the-receipts-must-flow/internal/common"
	"github.com/Veraticus/the-receipts-must-flow/internal/roster"
)

func rosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Inspect and cache the payee roster",
		Long:  `Copy the roster into the local cache and look payees up the way the bot does.`,
	}

	cmd.AddCommand(rosterSyncCmd())
	cmd.AddCommand(rosterLookupCmd())
	cmd.AddCommand(rosterListCmd())

	return cmd
}

func rosterSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Copy the roster source into the local cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}

			upstream, err := initUpstream(ctx, cfg)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := roster.Sync(ctx, upstream, store)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(),
				cli.FormatSuccess(fmt.Sprintf("Cached %d roster records from %s", n, cfg.Roster.Source)))
			return err
		},
	}
}

func rosterLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <name>",
		Short: "Resolve a payee label against the roster",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}

			source, cleanup, err := initRosterSource(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			lookup, err := source.LoadRoster(ctx)
			if err != nil {
				return err
			}

			label := strings.Join(args, " ")
			key := roster.NormalizeKey(label)
			out := cmd.OutOrStdout()

			record, err := lookup.Lookup(ctx, key)
			if errors.Is(err, common.ErrNotFound) {
				_, err = fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%q (key %q) is not in the roster", label, key)))
				return err
			}
			if err != nil {
				return err
			}

			body := strings.Join([]string{
				"Key:       " + record.MatchKey,
				"Name:      " + record.LegalName,
				"Address:   " + record.Address,
				"Phone:     " + record.Phone,
				"Birthdate: " + record.Birthdate,
			}, "\n")
			_, err = fmt.Fprintln(out, cli.RenderBox(label, body))
			return err
		},
	}
}

func rosterListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the cached roster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			info, err := store.LastRosterSync(ctx)
			if errors.Is(err, common.ErrNotFound) {
				_, err = fmt.Fprintln(out, cli.FormatInfo("The roster cache is empty. Run: receipts roster sync"))
				return err
			}
			if err != nil {
				return err
			}

			records, err := store.ListRoster(ctx)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(records))
			for i, r := range records {
				rows = append(rows, []string{strconv.Itoa(i + 1), r.MatchKey, r.LegalName, r.Phone})
			}

			_, err = fmt.Fprintln(out,
				cli.FormatTitle(fmt.Sprintf("Roster cache, synced %s", info.SyncedAt.Local().Format(time.DateTime)))+"\n"+
					cli.RenderTable([]string{"#", "Key", "Name", "Phone"}, rows))
			return err
		},
	}
}
