package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dukerupert/habiti/internal/backup"
	"github.com/dukerupert/habiti/internal/model"
	"github.com/dukerupert/habiti/internal/store"
)

var (
	backupNow   bool
	backupLimit int
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Show remote backup history or upload a backup now",
	Long: `Backup lists recent uploads to S3-compatible storage. With --now it
uploads the current state first and prunes uploads past the retention period.

Example:
  habiti backup
  habiti backup --now`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().BoolVar(&backupNow, "now", false, "upload a backup before listing")
	backupCmd.Flags().IntVar(&backupLimit, "limit", 10, "number of history rows to show")
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	bs := store.NewBackupStore(a.db)
	mgr := backup.NewManager(a.cfg.Backup, bs, a.tracker, a.logger, nil)
	w := cmd.OutOrStdout()

	if backupNow {
		b, err := mgr.RunNow(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Uploaded %s (%s)\n", b.Filename, humanize.Bytes(uint64(b.SizeBytes)))
		if err := mgr.Cleanup(ctx); err != nil {
			a.logger.Warn("prune old backups", "error", err)
		}
	}

	history, err := mgr.History(ctx, backupLimit)
	if err != nil {
		return err
	}
	latest, err := bs.LatestCompleted(ctx)
	if err != nil {
		return err
	}
	total, err := bs.TotalSize(ctx)
	if err != nil {
		return err
	}

	if !mgr.Enabled() {
		fmt.Fprintln(w, "Remote backups are not configured (set HABITI_S3_BUCKET and credentials).")
	}
	if latest != nil && latest.CompletedAt != nil {
		fmt.Fprintf(w, "Last backup %s, %s stored\n", humanize.Time(*latest.CompletedAt), humanize.Bytes(uint64(total)))
	}
	printHistory(w, history, time.Now())
	return nil
}

func printHistory(w io.Writer, history []model.Backup, now time.Time) {
	if len(history) == 0 {
		fmt.Fprintln(w, "No backups yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tSTATUS\tSIZE\tWHEN")
	for _, b := range history {
		size := "-"
		if b.SizeBytes > 0 {
			size = humanize.Bytes(uint64(b.SizeBytes))
		}
		status := string(b.Status)
		if b.ErrorMessage != "" {
			status += ": " + b.ErrorMessage
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			b.ID, b.Filename, status, size, humanize.RelTime(b.CreatedAt, now, "ago", "from now"))
	}
	tw.Flush()
}
