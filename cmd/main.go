package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"techscout/aggregate"
	"techscout/api"
	"techscout/config"
	"techscout/export"
	"techscout/relevance"
	"techscout/search"
	"techscout/source"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "techscout",
		Short: "Multi-source article discovery and enrichment",
		Long:  "techscout searches several content sources for a keyword set, deduplicates the results by URL and enriches them with publication date and popularity metrics.",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(searchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			registry, err := buildRegistry(cfg, logger)
			if err != nil {
				return err
			}

			engine := aggregate.NewEngine(logger)
			handler := api.NewSearchHandler(engine, registry, search.NewSimpleKeywordExtractor(), logger)
			return api.NewServer(handler, cfg.AppPort, logger).Start()
		},
	}
}

func searchCmd() *cobra.Command {
	var (
		max          int
		sortBy       string
		urlsOnly     bool
		timeout      time.Duration
		minRelevance float32
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one aggregation and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(strings.Join(args, " "), max, sortBy, urlsOnly, timeout, minRelevance)
		},
	}

	cmd.Flags().IntVarP(&max, "max", "n", 30, "maximum number of results")
	cmd.Flags().StringVar(&sortBy, "sort", "recency", "display order: recency or popularity")
	cmd.Flags().BoolVar(&urlsOnly, "urls-only", false, "print newline-joined URLs only")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "abort the run after this duration (0 = no timeout)")
	cmd.Flags().Float32Var(&minRelevance, "min-relevance", 0, "drop results whose keyword relevance score is below this fraction")
	return cmd
}

func runSearch(query string, max int, sortBy string, urlsOnly bool, timeout time.Duration, minRelevance float32) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	tokens, err := search.NewSimpleKeywordExtractor().ExtractKeywords(query)
	if err != nil {
		return err
	}

	// Ctrl-C is the run's cancellation signal.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	results, err := aggregate.NewEngine(logger).Run(ctx, tokens, registry.All(), max)
	if err != nil {
		if source.IsAborted(err) {
			fmt.Fprintln(os.Stderr, "stopped by user")
			return nil
		}
		return fmt.Errorf("search failed: %w", err)
	}

	if minRelevance > 0 {
		results, err = filterByRelevance(results, tokens, minRelevance)
		if err != nil {
			return err
		}
	}

	export.Sort(results, sortBy)

	if urlsOnly {
		fmt.Println(export.JoinURLs(results))
		return nil
	}

	for i, r := range results {
		fmt.Printf("%3d. %s\n     %s\n     published=%s likes=%s views=%s source=%s\n",
			i+1, r.Title, r.URL,
			formatDate(r.PublishedAt), formatCount(r.LikeCount), formatCount(r.ViewCount), r.SourceID)
	}
	fmt.Printf("\n%d results\n", len(results))
	return nil
}

func buildRegistry(cfg *config.Config, logger *zap.Logger) (*source.Registry, error) {
	sources, err := config.LoadSources(cfg.SourcesPath)
	if err != nil {
		return nil, err
	}
	minDelay, maxDelay, err := sources.DelayBounds()
	if err != nil {
		return nil, err
	}

	client, err := source.NewHTTPClient(cfg.ProxyURL, 20*time.Second)
	if err != nil {
		return nil, fmt.Errorf("build http client: %w", err)
	}

	// The API provider paces pages with a fixed delay; the scraping
	// providers randomize within the configured bounds.
	apiFetcher := source.NewFetcher(client, minDelay, minDelay)
	pageFetcher := source.NewFetcher(client, minDelay, maxDelay)

	registry := source.NewRegistry(
		source.NewQiita(apiFetcher, cfg.QiitaToken, logger),
		source.NewZenn(pageFetcher, logger),
		source.NewNote(pageFetcher, logger),
	)
	if len(sources.Feeds) > 0 {
		registry.Register(source.NewRSS(sources.Feeds, source.NewFetcher(client, minDelay, maxDelay), logger))
	}
	return registry, nil
}

func filterByRelevance(results []source.Enriched, tokens []string, min float32) ([]source.Enriched, error) {
	filter, err := relevance.NewKeywordRelevanceFilter(tokens)
	if err != nil {
		return nil, err
	}
	kept := results[:0]
	for _, r := range results {
		_, score, err := filter.IsContentRelevant(r.Title + " " + r.Snippet)
		if err != nil {
			return nil, err
		}
		if score >= min {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

func formatDate(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return ts.Format(time.RFC3339)
}

func formatCount(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}
