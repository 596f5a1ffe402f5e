package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adalundhe/producticons/core/filesystem"
	"github.com/adalundhe/producticons/core/icontheme"
)

var validateCmd = &cobra.Command{
	Use:   "validate <theme.json>",
	Short: "Parse a product icon theme and report problems",
	Long: `Parse a product icon theme file and report every problem found.

Syntax errors and a missing top-level shape fail the command. Invalid fonts,
font sources and icon definitions are dropped and reported as warnings.

Examples:
  producticons validate ./themes/fluent.json
  producticons validate ./themes/fluent.json --json
  producticons validate ./themes/fluent.json --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateStrict bool

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Fail when the theme has warnings")
	rootCmd.AddCommand(validateCmd)
}

// ErrWarnings is returned by validate --strict when a theme loads with
// warnings.
var ErrWarnings = errors.New("product icon theme has warnings")

type validateResult struct {
	Location string   `json:"location"`
	Valid    bool     `json:"valid"`
	Icons    int      `json:"icons"`
	IconIDs  []string `json:"iconIds"`
	Fonts    []string `json:"fonts"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	location, err := filesystem.FileURL(args[0])
	if err != nil {
		return err
	}
	loader, err := newThemeLoader()
	if err != nil {
		return err
	}

	result := validateResult{Location: location.String(), IconIDs: []string{}, Warnings: []string{}, Fonts: []string{}}
	doc, warnings, loadErr := loader.LoadDocument(cmd.Context(), location)
	if loadErr != nil {
		result.Errors = errorMessages(loadErr)
	} else {
		result.Valid = true
		result.Icons = doc.Len()
		result.IconIDs = append(result.IconIDs, doc.IconIDs()...)
		for _, f := range doc.Fonts() {
			result.Fonts = append(result.Fonts, f.ID)
		}
		result.Warnings = append(result.Warnings, warnings...)
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		if err := writeJSON(out, result); err != nil {
			return err
		}
	} else {
		printValidateResult(out, result)
	}

	if loadErr != nil {
		return loadErr
	}
	if validateStrict && len(result.Warnings) > 0 {
		return fmt.Errorf("%w: %d", ErrWarnings, len(result.Warnings))
	}
	return nil
}

func errorMessages(err error) []string {
	var parseErr *icontheme.ParseError
	if errors.As(err, &parseErr) {
		return append([]string{parseErr.Error()}, parseErr.Messages()...)
	}
	return []string{err.Error()}
}

func printValidateResult(w io.Writer, r validateResult) {
	if !r.Valid {
		fmt.Fprintf(w, "%s%sinvalid%s %s\n", colorBold, colorRed, colorReset, r.Location)
		for _, msg := range r.Errors {
			fmt.Fprintf(w, "  %s%s%s\n", colorRed, msg, colorReset)
		}
		return
	}

	fmt.Fprintf(w, "%s%svalid%s %s\n", colorBold, colorGreen, colorReset, r.Location)
	fmt.Fprintf(w, "  %sicons:%s %d\n", colorGray, colorReset, r.Icons)
	fmt.Fprintf(w, "  %sfonts:%s %d\n", colorGray, colorReset, len(r.Fonts))
	for _, id := range r.Fonts {
		fmt.Fprintf(w, "    %s%s%s\n", colorCyan, id, colorReset)
	}
	if len(r.Warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "  %swarnings:%s %d\n", colorYellow, colorReset, len(r.Warnings))
	for _, msg := range r.Warnings {
		fmt.Fprintf(w, "    %s\n", msg)
	}
}
