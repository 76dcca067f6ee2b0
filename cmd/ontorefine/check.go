package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ontorefine/internal/config"
	"ontorefine/internal/filter"
)

var checkCmd = &cobra.Command{
	Use:   "check -c <config>",
	Short: "Parse and validate a configuration file",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringP("config", "c", "", "configuration file (.toml, .yaml)")
	_ = checkCmd.MarkFlagRequired("config")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return usageError{err}
	}
	if _, err := filter.Hook(cfg.UserProcedure); err != nil {
		return usageError{fmt.Errorf("%s: %w", path, err)}
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	if quiet {
		return nil
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: ok\n", path)
	fmt.Fprintf(out, "  prefix %q, root %q\n", cfg.CodePrefix, cfg.OntologyRoot)
	fmt.Fprintf(out, "  %d filters, %d enumerations, %d ethnic codes\n",
		len(cfg.Filters), len(cfg.Enumerations), len(cfg.Ethnicity.Codes))
	for _, e := range cfg.Enumerations {
		switch {
		case e.IsRecentTime():
			fmt.Fprintf(out, "    %-16s time buckets\n", e.Name)
		case e.Grouped():
			fmt.Fprintf(out, "    %-16s %d..%d by %d\n", e.Name, *e.First, *e.Last, e.Group)
		case e.HasRange():
			fmt.Fprintf(out, "    %-16s %d..%d\n", e.Name, *e.First, *e.Last)
		default:
			fmt.Fprintf(out, "    %-16s no generator\n", e.Name)
		}
	}
	return nil
}
