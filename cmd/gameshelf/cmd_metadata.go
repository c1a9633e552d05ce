package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/meur/gameshelf/internal/catalog"
	"github.com/meur/gameshelf/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
)

var (
	metadataDryRun      bool
	metadataConcurrency int
)

var metadataCmd = &cobra.Command{
	Use:   "update-metadata",
	Short: "Fill in release year, platforms and cover art from the catalog",
	Long: `Looks every homepage card without cached metadata up in the catalog by
title. Matches are cached per card, and empty release year, platform and
image fields are filled in. Fields the user already set are kept.`,
	RunE: runUpdateMetadata,
}

func init() {
	metadataCmd.Flags().BoolVar(&metadataDryRun, "dry-run", false, "Report matches without writing")
	metadataCmd.Flags().IntVar(&metadataConcurrency, "concurrency", 4, "Parallel catalog lookups")
}

// bestMatch prefers an exact title match and falls back to the top result
func bestMatch(title string, games []catalog.Game) (catalog.Game, bool) {
	if len(games) == 0 {
		return catalog.Game{}, false
	}
	fold := cases.Fold()
	want := fold.String(strings.TrimSpace(title))
	for _, g := range games {
		if fold.String(g.Name) == want {
			return g, true
		}
	}
	return games[0], true
}

// metadataPatch fills only the fields the card leaves empty
func metadataPatch(card models.Card, g catalog.Game) models.CardPatch {
	var patch models.CardPatch
	if card.ReleaseYear == "" && len(g.Released) >= 4 {
		year := g.Released[:4]
		patch.ReleaseYear = &year
	}
	if card.Platforms == "" && len(g.Platforms) > 0 {
		platforms := g.Platforms.String()
		patch.Platforms = &platforms
	}
	if card.Image == nil && g.Image != "" {
		img := g.Image
		patch.Image = &img
	}
	return patch
}

func runUpdateMetadata(cmd *cobra.Command, args []string) error {
	sh, err := openShelf()
	if err != nil {
		return err
	}
	defer sh.Close()

	rawg := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, cfg.Catalog.Timeout)
	defer rawg.Close()

	cards := sh.CardsMissingMetadata()
	fmt.Printf("Looking up %d cards\n", len(cards))

	var (
		mu       sync.Mutex
		updated  int
		notFound []string
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	if metadataConcurrency < 1 {
		metadataConcurrency = 1
	}
	g.SetLimit(metadataConcurrency)

	for _, card := range cards {
		card := card
		if strings.TrimSpace(card.Title) == "" || card.Title == models.DefaultTitle {
			continue
		}
		g.Go(func() error {
			lookupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			games, err := rawg.Search(lookupCtx, card.Title, 5)
			if err != nil {
				// the catalog is optional, a failed lookup is not fatal
				logger.Warn("catalog lookup failed", zap.String("title", card.Title), zap.Error(err))
				return nil
			}
			match, ok := bestMatch(card.Title, games)

			mu.Lock()
			defer mu.Unlock()
			if !ok {
				notFound = append(notFound, card.Title)
				return nil
			}
			if metadataDryRun {
				fmt.Printf("  %s → %s (%s)\n", card.Title, match.Name, match.Released)
				return nil
			}
			sh.SetCardMetadata(card.ID, match)
			sh.UpdateCard(card.ID, metadataPatch(card, match))
			updated++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("\n✅ Updated: %d cards\n", updated)
	if len(notFound) > 0 {
		fmt.Printf("⚠ Not found: %d cards\n", len(notFound))
		for _, title := range notFound {
			fmt.Printf("  - %s\n", title)
		}
	}
	return nil
}
