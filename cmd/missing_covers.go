package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podshelf/shelf-cli/internal/covers"
)

var missingCoversCmd = &cobra.Command{
	Use:   "missing-covers",
	Short: "List catalog entries that have no cover image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := newStore()
		books, err := st.Load()
		if err != nil {
			return err
		}

		missing := covers.Missing(books)
		for _, b := range missing {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\thttps://www.amazon.in/dp/%s\n", b.ASIN, b.Title, b.ASIN)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d entries missing covers\n", len(missing), len(books))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(missingCoversCmd)
}
