package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ivlev/storyboard/internal/config"
	"github.com/ivlev/storyboard/internal/refcheck"
)

func newRefsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refs <file...>",
		Short: "Validate reference images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			refs, err := collectReferences(args)
			if err != nil {
				return err
			}

			v := refcheck.NewValidator()
			invalid := 0
			for _, ref := range refs {
				res := v.Validate(ref)
				if !res.IsValid {
					invalid++
					fmt.Fprintf(out, "[-] %s: %s\n", res.Path, strings.Join(res.Errors, "; "))
					continue
				}
				fmt.Fprintf(out, "[+] %s: %s %dx%d\n", res.Path, res.Format, res.Width, res.Height)
				for _, w := range res.Warnings {
					fmt.Fprintf(out, "[!] %s: %s\n", res.Path, w)
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d references invalid", invalid, len(refs))
			}
			return nil
		},
	}
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Print the provider duration constraints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("providers")
			table, err := config.LoadProviders(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCLIPS\tTARGET\tTOLERANCE\tMAX REFS")
			hasFixed := false
			for _, name := range table.Names() {
				p, _ := table.Lookup(name)
				hasFixed = hasFixed || p.IsFixed()
				fmt.Fprintf(tw, "%s\t%s\t%.1fs\t%.2f\t%d\n", p.Name, describeClips(p), p.Target(), p.Tolerance, p.MaxReferences)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if hasFixed {
				fmt.Fprintln(out, "[!] fixed: every batch must add up to exactly the clip length, otherwise the build fails")
			}
			return nil
		},
	}
}

func describeClips(p config.ProviderSpec) string {
	if p.IsFixed() {
		return fmt.Sprintf("fixed %gs", p.FixedDuration)
	}
	d := append([]float64(nil), p.AllowedDurations...)
	sort.Float64s(d)
	parts := make([]string, len(d))
	for i, v := range d {
		parts[i] = fmt.Sprintf("%gs", v)
	}
	return strings.Join(parts, "/")
}
