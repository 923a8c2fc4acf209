package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ayusman/handsnap/internal/store"
	"github.com/spf13/cobra"
)

func runPhotos(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	return printPhotos(cmd.OutOrStdout(), st, limitFlag)
}

// printPhotos writes the newest photos as an aligned table.
func printPhotos(w io.Writer, st *store.Store, limit int) error {
	photos, err := st.Photos().List(limit)
	if err != nil {
		return fmt.Errorf("list photos: %w", err)
	}
	if len(photos) == 0 {
		fmt.Fprintln(w, "No photos yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAKEN\tSTATUS\tPATH")
	for _, p := range photos {
		path := p.Path
		if p.Error != "" {
			path += " (" + p.Error + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.TakenAt.Local().Format(time.DateTime), p.Status, path)
	}
	return tw.Flush()
}
