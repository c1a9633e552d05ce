package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/meur/gameshelf/internal/models"
	"github.com/spf13/cobra"
)

var leaderboardMode string

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print the leaderboard",
	RunE:  runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().StringVarP(&leaderboardMode, "mode", "m", "", "franchise or game (default: the saved mode)")
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	sh, err := openShelf()
	if err != nil {
		return err
	}
	defer sh.Close()

	mode := sh.RankingMode()
	if leaderboardMode != "" {
		if mode, err = models.ParseRankingMode(leaderboardMode); err != nil {
			return err
		}
	}

	entries := sh.Leaderboard(mode)
	if len(entries) == 0 {
		fmt.Printf("No rated %s cards yet\n", mode)
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tRATING\tID")
	for _, e := range entries {
		title := e.Title
		if e.IsRankingOnly {
			title += " *"
		}
		fmt.Fprintf(tw, "%d\t%s\t%g\t%d\n", e.Position, title, e.Rating, e.ID)
	}
	return tw.Flush()
}
