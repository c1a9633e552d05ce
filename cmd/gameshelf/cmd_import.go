package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/meur/gameshelf/internal/shelf"
	"github.com/spf13/cobra"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import [snapshot.json]",
	Short: "Merge an exported snapshot into the shelf",
	Long: `Reads a snapshot written by GET /api/export and merges it into the
configured store. Cards whose id already exists are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Only report what would be imported")
}

func readSnapshot(path string) (shelf.Snapshot, error) {
	var snap shelf.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return snap, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	snap, err := readSnapshot(args[0])
	if err != nil {
		return err
	}

	entries := 0
	for _, list := range snap.Categories {
		entries += len(list)
	}
	fmt.Printf("%s📦 Loaded %d cards and %d category entries%s\n", colorCyan, len(snap.Cards), entries, colorReset)

	if importDryRun {
		fmt.Printf("Dry run: would import %d cards, %d entries, %d ranked games\n",
			len(snap.Cards), entries, len(snap.RankedGames))
		return nil
	}

	sh, err := openShelf()
	if err != nil {
		return err
	}
	defer sh.Close()

	stats := sh.Import(snap)
	if stats.Skipped > 0 {
		fmt.Printf("%s⚠ Skipped %d card(s) already on the shelf%s\n", colorYellow, stats.Skipped, colorReset)
	}
	fmt.Printf("%s✓ Imported %d cards, %d entries, %d ratings%s\n",
		colorGreen, stats.Cards, stats.Entries, stats.Ratings, colorReset)
	return nil
}
