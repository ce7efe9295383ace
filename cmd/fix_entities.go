package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/podshelf/shelf-cli/internal/titles"
)

var fixEntitiesCmd = &cobra.Command{
	Use:   "fix-entities",
	Short: "Decode HTML entities left in catalog titles by earlier imports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := newStore()
		books, err := st.Load()
		if err != nil {
			return err
		}

		fixed := 0
		for i := range books {
			decoded := titles.DecodeEntities(books[i].Title)
			if decoded == books[i].Title {
				continue
			}
			zap.L().Info("title fixed",
				zap.String("asin", books[i].ASIN),
				zap.String("before", books[i].Title),
				zap.String("after", decoded),
			)
			books[i].Title = decoded
			fixed++
		}
		if fixed == 0 {
			zap.L().Info("no encoded titles found")
			return nil
		}

		backup, err := st.Backup()
		if err != nil {
			return err
		}
		zap.L().Info("catalog backed up", zap.String("path", backup))

		if err := st.Save(books); err != nil {
			return err
		}
		zap.L().Info("entities fixed", zap.Int("titles", fixed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fixEntitiesCmd)
}
