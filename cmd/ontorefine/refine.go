package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ontorefine/internal/config"
	"ontorefine/internal/diag"
	"ontorefine/internal/driver"
	"ontorefine/internal/ontology"
	"ontorefine/internal/prof"
)

var refineCmd = &cobra.Command{
	Use:   "refine -i <input> -c <config> -r <refine-dir> -e <enum-dir> -n <name>",
	Short: "Refine a directory of metadata files",
	Long: `Refine every metadata file of the input directory into one ontology
document written to <refine-dir>/<name>, with generated enumerations written
to <enum-dir>. Both output directories must not exist yet.`,
	Args: cobra.NoArgs,
	RunE: runRefine,
}

func init() {
	f := refineCmd.Flags()
	f.StringP("input", "i", "", "input directory of stage-one metadata files")
	f.StringP("config", "c", "", "configuration file (.toml, .yaml)")
	f.StringP("refine", "r", "", "output directory for the main document")
	f.StringP("enum", "e", "", "output directory for enumeration artifacts")
	f.StringP("name", "n", "", "file name of the main document")
	f.String("format", "xml", "output format (xml|json|msgpack)")
	f.Int("jobs", 0, "max parallel decoders (0=auto)")
	f.String("ui", "auto", "progress UI (auto|on|off)")
	f.Bool("strict", false, "exit non-zero when any error diagnostic was reported")
	f.Bool("timings", false, "print phase timings")
	f.Bool("with-notes", false, "include diagnostic notes")
	f.Bool("verbose", false, "also print informational diagnostics")
	f.Int("max-diagnostics", 10000, "maximum number of diagnostics to keep")
	f.String("cpuprofile", "", "write a CPU profile to this file")
	f.String("memprofile", "", "write a heap profile to this file")
	for _, name := range []string{"input", "config", "refine", "enum", "name"} {
		_ = refineCmd.MarkFlagRequired(name)
	}
}

func runRefine(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	opts := driver.Options{}
	opts.InputDir, _ = flags.GetString("input")
	opts.ConfigPath, _ = flags.GetString("config")
	opts.RefineDir, _ = flags.GetString("refine")
	opts.EnumDir, _ = flags.GetString("enum")
	opts.Name, _ = flags.GetString("name")
	opts.Jobs, _ = flags.GetInt("jobs")
	opts.MaxDiagnostics, _ = flags.GetInt("max-diagnostics")

	formatStr, _ := flags.GetString("format")
	format, err := ontology.ParseFormat(formatStr)
	if err != nil {
		return usageError{err}
	}
	opts.Format = format

	uiStr, _ := flags.GetString("ui")
	mode, err := readUIMode(uiStr)
	if err != nil {
		return usageError{err}
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	strict, _ := flags.GetBool("strict")
	timings, _ := flags.GetBool("timings")
	withNotes, _ := flags.GetBool("with-notes")
	verbose, _ := flags.GetBool("verbose")

	plan, err := driver.Prepare(opts)
	if err != nil {
		if isPrepareError(err) {
			return usageError{err}
		}
		return err
	}
	// дальше ошибки относятся к обработке, а не к аргументам
	cmd.SilenceUsage = true

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	var profOpts prof.Options
	profOpts.CPUPath, _ = flags.GetString("cpuprofile")
	profOpts.MemPath, _ = flags.GetString("memprofile")
	session, err := prof.Start(profOpts)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
		}
	}()

	var res *driver.Result
	if shouldUseTUI(mode, quiet) {
		res, err = executeWithUI(cmd.Context(), plan)
	} else {
		res, err = plan.Execute(cmd.Context())
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printDiagnostics(cmd.ErrOrStderr(), res.Bag, verbose, withNotes)
	if !quiet {
		printSummary(out, res)
	}
	if timings {
		if _, err := res.Timings.WriteTo(out); err != nil {
			return err
		}
	}
	if strict && res.Bag.HasErrors() {
		return fmt.Errorf("%w: %d", errStrict, res.Bag.Count(diag.SevError))
	}
	return nil
}

// isPrepareError reports failures of the option checks, which are usage
// problems rather than processing failures.
func isPrepareError(err error) bool {
	for _, target := range []error{
		driver.ErrMissingOption, driver.ErrInputMissing, driver.ErrInputEmpty,
		driver.ErrOutputExists, config.ErrInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
