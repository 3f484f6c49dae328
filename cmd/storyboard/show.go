package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ivlev/storyboard/internal/config"
	"github.com/ivlev/storyboard/internal/director"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [storyboard.yaml]",
		Short: "Print the batches and chaining of a saved storyboard",
		Long: `Reload a saved storyboard and print its batches, chaining decisions and warnings.
Without an argument the newest storyboard in --dir is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShow,
	}
	cmd.Flags().String("dir", config.Default().OutputDir, "Directory searched for the newest storyboard")
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		dir, _ := cmd.Flags().GetString("dir")
		latest, err := director.FindLatestStoryboard(dir)
		if err != nil {
			return err
		}
		path = latest
	}

	sb, err := director.ReadStoryboard(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "[*] %s\n", path)
	fmt.Fprintf(out, "[*] Проект: %s | Провайдер: %s | Сцен: %d | Длительность: %.2fs\n",
		sb.ProjectID, sb.Provider, len(sb.Scenes), sb.TotalDurationSec)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BATCH\tSECTION\tSPAN\tCLIP\tCHAIN\tMEDIA")
	for i, b := range sb.Batches {
		chain := "-"
		if i < len(sb.Chain) {
			chain = "new"
			if sb.Chain[i].Chain {
				chain = "chain"
			}
			chain += " (" + sb.Chain[i].Reason + ")"
		}
		media := b.ApprovedMedia
		if media == "" {
			media = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f-%.2fs\t%gs\t%s\t%s\n",
			b.Order, b.Section.String(), b.StartSec, b.EndSec, b.ClipDurationSec, chain, media)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if refs := sb.References.List(); len(refs) > 0 {
		names := make([]string, len(refs))
		for i, r := range refs {
			names[i] = r.Name
		}
		fmt.Fprintf(out, "[*] Референсы: %s\n", strings.Join(names, ", "))
	}
	for _, w := range sb.Warnings {
		fmt.Fprintf(out, "[!] %s\n", w)
	}
	return nil
}
