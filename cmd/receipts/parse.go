package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-receipts-must-flow/internal/cli"
	"github.com/Veraticus/the-receipts-must-flow/internal/ledger"
)

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Show how a message would be read",
		Long: `Parse a message the way the bot does and print the entries found.
Reads stdin when no file is given. Nothing is looked up or rendered.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}

			var path string
			if len(args) == 1 {
				path = args[0]
			}
			text, err := readLedger(path, cmd.InOrStdin())
			if err != nil {
				return err
			}

			entries := ledger.Parse(text, cfg.Groups)
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, err := fmt.Fprintln(out, cli.FormatWarning("No entries found"))
				return err
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{string(e.Group), e.PayeeLabel, strconv.Itoa(e.Amount)})
			}
			_, err = fmt.Fprintln(out, cli.RenderTable([]string{"Group", "Payee", "Amount"}, rows))
			return err
		},
	}
}
