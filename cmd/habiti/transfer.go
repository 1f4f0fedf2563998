package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/dukerupert/habiti/internal/backup"
)

var (
	exportOut        string
	exportPassphrase string
	importPassphrase string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the full state to an export document",
	Long: `Export writes habits, entries, game state, categories and plans as a
JSON document. With --passphrase the document is encrypted.

Example:
  habiti export
  habiti export --out backup.json --passphrase "correct horse"`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the full state with an export document",
	Long: `Import replaces every habit, entry, plan and the game state with the
contents of an export document. Malformed records are skipped and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importCSVCmd = &cobra.Command{
	Use:   "import-csv <file>",
	Short: "Add habits from a spreadsheet export",
	Long: `Import-csv adds one habit per row of a CSV with the columns
Area, Task, Details, Rating, Type, Time frame. A header row is optional.
Rows that cannot be used are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportCSV,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: habiti-backup-<date>.json)")
	exportCmd.Flags().StringVar(&exportPassphrase, "passphrase", "", "encrypt the export with this passphrase")
	importCmd.Flags().StringVar(&importPassphrase, "passphrase", "", "passphrase of an encrypted export")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	doc := a.tracker.Export()
	data, err := backup.Encode(doc)
	if err != nil {
		return err
	}
	out := exportOut
	if out == "" {
		out = backup.Filename(doc.ExportedAt)
	}
	if exportPassphrase != "" {
		if data, err = backup.Encrypt(data, exportPassphrase); err != nil {
			return fmt.Errorf("encrypt export: %w", err)
		}
		if exportOut == "" {
			out += ".enc"
		}
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d habits and %d entries to %s (%s)\n",
		len(doc.Habits), len(doc.Entries), out, humanize.Bytes(uint64(len(data))))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	plain, err := backup.Open(data, importPassphrase)
	if err != nil {
		return err
	}
	doc, err := backup.Decode(plain)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sum := a.tracker.Import(cmd.Context(), doc)
	w := cmd.OutOrStdout()
	exported := "at an unknown time"
	if !doc.ExportedAt.IsZero() {
		exported = humanize.RelTime(doc.ExportedAt, time.Now(), "ago", "from now")
	}
	fmt.Fprintf(w, "Imported export taken %s: %d habits, %d entries, %d plans\n",
		exported, sum.Habits, sum.Entries, sum.Plans)
	if sum.Migrated > 0 {
		fmt.Fprintf(w, "Upgraded %d habits from an older format\n", sum.Migrated)
	}
	for _, e := range doc.Skipped {
		fmt.Fprintf(w, "  skipped: %v\n", e)
	}
	return nil
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.tracker.ImportCSV(cmd.Context(), f)
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Imported %s\n", english.Plural(res.Imported, "habit", "habits"))
	for _, msg := range res.Messages() {
		fmt.Fprintf(w, "  %s\n", msg)
	}
	return nil
}
