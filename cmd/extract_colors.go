package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/podshelf/shelf-cli/internal/colors"
	"github.com/podshelf/shelf-cli/internal/model"
)

var extractColorsCmd = &cobra.Command{
	Use:   "extract-colors",
	Short: "Derive spine colors from downloaded cover images",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := newStore()
		books, err := st.Load()
		if err != nil {
			return err
		}

		// Cover paths are stored relative to the public root, e.g.
		// "covers/<id>.jpg"; resolve them against the covers dir's parent.
		root := filepath.Dir(cfg.Catalog.CoversDir)

		extracted, skipped := 0, 0
		for i := range books {
			b := &books[i]
			if b.Cover == nil {
				skipped++
				continue
			}
			if b.BackgroundColor != model.DefaultBackgroundColor {
				continue // already extracted
			}
			bg, txt, err := colors.Extract(filepath.Join(root, filepath.FromSlash(*b.Cover)))
			if err != nil {
				zap.L().Warn("color extraction failed",
					zap.String("asin", b.ASIN),
					zap.String("cover", *b.Cover),
					zap.Error(err))
				skipped++
				continue
			}
			b.BackgroundColor = bg
			b.TextColor = txt
			extracted++
		}

		if extracted > 0 {
			if err := st.Save(books); err != nil {
				return err
			}
		}
		zap.L().Info("colors extracted", zap.Int("extracted", extracted), zap.Int("skipped", skipped))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractColorsCmd)
}
