package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	seedsDir  string
	seedForce bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo library into an empty shelf",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedsDir, "seeds", "./seeds", "Seeds directory")
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Seed even when the shelf already has cards")
}

func runSeed(cmd *cobra.Command, args []string) error {
	sh, err := openShelf()
	if err != nil {
		return err
	}
	defer sh.Close()

	if n := len(sh.Cards()); n > 0 && !seedForce {
		fmt.Printf("Shelf already has %d cards, skipping (use --force to merge)\n", n)
		return nil
	}

	files, err := filepath.Glob(filepath.Join(seedsDir, "*.json"))
	if err != nil {
		return err
	}
	for _, file := range files {
		snap, err := readSnapshot(file)
		if err != nil {
			logger.Warn("failed to seed", zap.String("file", file), zap.Error(err))
			continue
		}
		stats := sh.Import(snap)
		fmt.Printf("✓ Seeded %d cards and %d entries from %s\n", stats.Cards, stats.Entries, filepath.Base(file))
	}

	fmt.Println("🌱 Seeding complete!")
	return nil
}
