package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/wikinsight/internal/browser"
	"github.com/pders01/wikinsight/internal/config"
	"github.com/pders01/wikinsight/internal/debuglog"
	"github.com/pders01/wikinsight/internal/insight"
	"github.com/pders01/wikinsight/internal/markup"
	"github.com/pders01/wikinsight/internal/search"
	"github.com/pders01/wikinsight/internal/storage"
	"github.com/pders01/wikinsight/internal/tui"
	"github.com/pders01/wikinsight/internal/wiki"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath   string
	dbPath       string
	logLevel     string
	quiet        bool
	historyLimit int
	historyQuery bool
)

var rootCmd = &cobra.Command{
	Use:          "wikinsight",
	Short:        "Search Wikipedia from the terminal, with AI research insights",
	SilenceUsage: true,
	RunE:         runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("wikinsight %s\n", Version)
		fmt.Println("Wikipedia reader with AI research insights")
		fmt.Println("github.com/pders01/wikinsight")
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configGenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write the default configuration file",
	Run: func(_ *cobra.Command, _ []string) {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default configuration at: %s\n", path)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search Wikipedia and print the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer debuglog.Close()

		client := wiki.NewClient(cfg.Wiki)
		results, err := client.Search(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		printResults(cmd.OutOrStdout(), client, results)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [query]",
	Short: "List recently read articles, or search them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyQuery && len(args) > 0 {
			return fmt.Errorf("--queries lists past searches and takes no query")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer debuglog.Close()

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		out := cmd.OutOrStdout()
		if historyQuery {
			queries, err := store.RecentQueries(historyLimit)
			if err != nil {
				return err
			}
			printQueries(out, queries)
			return nil
		}
		if len(args) == 0 {
			visits, err := store.RecentVisits(historyLimit)
			if err != nil {
				return err
			}
			printVisits(out, visits)
			return nil
		}

		searcher := search.Open(store, cfg.Database.SearchIndex)
		defer closeSearcher(searcher)
		results, err := searcher.Search(args[0], historyLimit)
		if err != nil {
			return err
		}
		visits := make([]*storage.Visit, len(results))
		for i, r := range results {
			visits[i] = r.Visit
		}
		printVisits(out, visits)
		return nil
	},
}

var historyForgetCmd = &cobra.Command{
	Use:   "forget <title>",
	Short: "Remove an article from the history",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer debuglog.Close()

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		title := strings.Join(args, " ")
		if err := store.DeleteVisit(title); err != nil {
			return err
		}

		searcher := search.Open(store, cfg.Database.SearchIndex)
		defer closeSearcher(searcher)
		if l, ok := searcher.(search.UpdateListener); ok {
			l.OnVisitDeleted(title)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Forgot %q\n", title)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to history database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, off")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Skip startup banner")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of entries")
	historyCmd.Flags().BoolVarP(&historyQuery, "queries", "s", false, "List past searches instead of articles")

	configCmd.AddCommand(configGenCmd)
	historyCmd.AddCommand(historyForgetCmd)
	rootCmd.AddCommand(versionCmd, configCmd, searchCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
}

func closeSearcher(s search.Searcher) {
	if c, ok := s.(io.Closer); ok {
		if err := c.Close(); err != nil {
			debuglog.Warnf("closing history index: %v", err)
		}
	}
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer debuglog.Close()

	if !quiet {
		tui.ShowBanner(Version)
	}

	svc := tui.Services{
		Wiki:   wiki.NewClient(cfg.Wiki),
		Opener: browser.NewLauncher(cfg.Browser),
	}

	// Another instance may hold the database lock; read without history then.
	if store, err := openStore(cfg); err != nil {
		debuglog.Warnf("history disabled: %v", err)
	} else {
		defer store.Close()
		searcher := search.Open(store, cfg.Database.SearchIndex)
		defer closeSearcher(searcher)
		svc.Store = store
		svc.Searcher = searcher
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if summarizer, err := insight.New(ctx, cfg.Insight); err != nil {
		debuglog.Warnf("insights unavailable: %v", err)
		svc.InsightsErr = err
	} else {
		svc.Insights = summarizer
	}

	p := tea.NewProgram(tui.NewApp(cfg, svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}

func printResults(w io.Writer, client *wiki.Client, results []wiki.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	for _, r := range results {
		fmt.Fprintln(w, tui.HeaderStyle.Render(r.Title))
		if snippet := markup.Snippet(r.Snippet); snippet != "" {
			fmt.Fprintf(w, "  %s\n", snippet)
		}
		fmt.Fprintf(w, "  %s\n\n", client.ArticleURL(r.Title))
	}
}

func printVisits(w io.Writer, visits []*storage.Visit) {
	if len(visits) == 0 {
		fmt.Fprintln(w, "No history yet.")
		return
	}
	for _, v := range visits {
		fmt.Fprintf(w, "%s  %s (%d×)\n",
			v.LastVisited.Format(time.DateTime), tui.HeaderStyle.Render(v.Title), v.Count)
		if v.TLDR != "" {
			fmt.Fprintf(w, "  %s\n", v.TLDR)
		}
	}
}

func printQueries(w io.Writer, queries []*storage.Query) {
	if len(queries) == 0 {
		fmt.Fprintln(w, "No searches yet.")
		return
	}
	for _, q := range queries {
		fmt.Fprintf(w, "%s  %s (%d×)\n", q.LastRun.Format(time.DateTime), q.Text, q.Count)
	}
}
