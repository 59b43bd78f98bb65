package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/dossier/pkg/automation"
)

var profileDump bool

func init() {
	profileCmd.Flags().BoolVar(&profileDump, "dump", false, "Print the whole effective profile as YAML")
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile [code...]",
	Short: "Show the site profile's programme aliases",
	Long: `Show how programme codes from a records file map to the route codes the
portal lists in search results.

Examples:
  # List every alias
  dossier profile

  # Resolve codes
  dossier profile AIBH ml TMSCOMSFRM01

  # Print the effective profile, e.g. as a starting point for --site-profile
  dossier profile --dump`,
	RunE: runProfile,
}

func runProfile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	profile := automation.DefaultProfile()
	if cfg.SiteProfile != "" {
		if profile, err = automation.LoadProfile(cfg.SiteProfile); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if profileDump {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(profile)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	if len(args) > 0 {
		for _, code := range args {
			fmt.Fprintf(w, "%s\t%s\n", code, profile.ResolveAlias(code))
		}
		return nil
	}

	codes := make([]string, 0, len(profile.Aliases))
	for code := range profile.Aliases {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "%s\t%s\n", code, profile.Aliases[code])
	}
	return nil
}
