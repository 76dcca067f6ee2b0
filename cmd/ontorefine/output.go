package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ontorefine/internal/diag"
	"ontorefine/internal/driver"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	pathColor    = color.New(color.Faint)
)

// errStrict signals a completed run that failed the --strict check.
var errStrict = errors.New("diagnostics contain errors")

// usageError marks failures that happen before any processing starts.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ue usageError
	switch {
	case errors.As(err, &ue):
		return 2
	default:
		return 1
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", errorColor.Sprint("error:"), err)
}

func applyColorFlag(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "", "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return usageError{fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)}
	}
	return nil
}

// printDiagnostics writes one colored line per diagnostic, most severe
// first. Info records are shown only when verbose is set.
func printDiagnostics(w io.Writer, bag *diag.Bag, verbose, withNotes bool) {
	if bag == nil {
		return
	}
	bag.Dedup()
	bag.Sort()
	for _, d := range bag.Items() {
		if d.Severity == diag.SevInfo && !verbose {
			continue
		}
		sev := severityColor(d.Severity).Sprint(d.Severity.String())
		line := fmt.Sprintf("%s %s", sev, d.Code.ID())
		if d.Path != "" {
			line += " " + pathColor.Sprint(d.Path) + ":"
		}
		line += " " + d.Message
		if d.Value != "" {
			line += " [" + d.Value + "]"
		}
		fmt.Fprintln(w, line)
		if withNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  note: %s\n", n.Msg)
			}
		}
	}
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

func printSummary(w io.Writer, res *driver.Result) {
	s := res.Stats
	fmt.Fprintf(w, "run %s: %d files, %d folders, %d variables, %d artifacts\n",
		res.RunID, s.Files, s.OntologySize.Folders, s.OntologySize.Variables, s.Artifacts)
	fmt.Fprintf(w, "  excluded %d, information-only %d, sibling groups %d (%d continuous), codes %d\n",
		s.Excluded, s.InfoOnly, s.Groups, s.Continuous, s.IssuedCodes)
	errs := res.Bag.Count(diag.SevError)
	warns := res.Bag.Count(diag.SevWarning) - errs
	fmt.Fprintf(w, "  diagnostics: %s, %s\n",
		errorColor.Sprintf("%d errors", errs), warningColor.Sprintf("%d warnings", warns))
	fmt.Fprintf(w, "  wrote %s\n", res.MainPath)
}
