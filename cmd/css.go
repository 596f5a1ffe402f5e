package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adalundhe/producticons/core/themes"
)

var cssCmd = &cobra.Command{
	Use:   "css <theme.json>",
	Short: "Render the font style sheet of a product icon theme",
	Long: `Render the @font-face rules and icon classes for a product icon theme.

Examples:
  producticons css ./fluent.json
  producticons css ./fluent.json -o fluent.css`,
	Args: cobra.ExactArgs(1),
	RunE: runCSS,
}

var cssOutput string

func init() {
	cssCmd.Flags().StringVarP(&cssOutput, "output", "o", "", "Write the style sheet to a file")
	rootCmd.AddCommand(cssCmd)
}

func runCSS(cmd *cobra.Command, args []string) error {
	loader, err := newThemeLoader()
	if err != nil {
		return err
	}
	theme, err := themes.FromFile(args[0], false)
	if err != nil {
		return err
	}
	styleSheet, err := theme.EnsureLoaded(cmd.Context(), loader)
	if err != nil {
		return err
	}
	return emitStyleSheet(cmd, cssOutput, styleSheet)
}

func emitStyleSheet(cmd *cobra.Command, path, styleSheet string) error {
	if path == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), styleSheet)
		return err
	}
	if err := os.WriteFile(path, []byte(styleSheet), 0644); err != nil {
		return fmt.Errorf("write style sheet: %w", err)
	}
	return nil
}
