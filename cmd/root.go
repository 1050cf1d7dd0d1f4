package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukman83/rakurank/config"
	"github.com/lukman83/rakurank/internal/httputil"
	"github.com/lukman83/rakurank/internal/ichiba"
	"github.com/lukman83/rakurank/internal/rpp"
	"github.com/lukman83/rakurank/internal/runner"
	"github.com/lukman83/rakurank/internal/stealth"
	"github.com/lukman83/rakurank/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rakurank",
	Short: "RakuRank - Ichiba search rank tracking CLI & MCP server",
	Long:  "Tracks where a shop's listings rank in Ichiba search results, both organic and sponsored (RPP).",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().String("app-id", "", "Ichiba application id")
	rootCmd.PersistentFlags().String("delay-profile", "", "Delay profile: cautious, normal, aggressive")
	rootCmd.PersistentFlags().Bool("respect-robots", true, "Respect robots.txt rules")
	rootCmd.PersistentFlags().Bool("headless", false, "Render ad pages in a headless browser")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")
}

func initConfig() {
	cfg = config.DefaultConfig()

	if path, _ := rootCmd.PersistentFlags().GetString("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("app-id"); v != "" {
		cfg.AppID = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("delay-profile"); v != "" {
		cfg.DelayProfile = v
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("respect-robots"); !v {
		cfg.RespectRobots = false
	}
	if v, _ := rootCmd.PersistentFlags().GetBool("headless"); v {
		cfg.Headless = true
	}

	level := slog.LevelInfo
	if v, _ := rootCmd.PersistentFlags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// buildPageClient creates the stealth-wrapped HTTP client used for HTML page
// fetches (robots checks, fingerprints, human delays).
func buildPageClient() *http.Client {
	transport := &stealth.Transport{
		Base: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
		},
		Robots:      stealth.NewRobotsChecker(&http.Client{Timeout: 10 * time.Second}, cfg.RespectRobots),
		Fingerprint: stealth.NewFingerprintPool(),
		Delay:       stealth.NewHumanDelay(stealth.DelayProfile(cfg.DelayProfile)),
	}
	return httputil.NewHTTPClient(transport, 30*time.Second)
}

// buildAPIClient creates the plain HTTP client used for the JSON search API.
func buildAPIClient() *http.Client {
	return httputil.NewHTTPClient(nil, 15*time.Second)
}

func openStore() (*store.Store, error) {
	return store.Open(cfg.DBPath)
}

// buildRunner wires resolvers and persistence from the active config.
func buildRunner(st *store.Store) *runner.Runner {
	apiClient := buildAPIClient()
	searchClient := ichiba.NewClient(cfg.AppID, cfg.SearchBaseURL, apiClient,
		time.Duration(cfg.SearchIntervalMS)*time.Millisecond)
	names := ichiba.NewGenreTagResolver(cfg.AppID, cfg.GenreBaseURL, cfg.TagBaseURL, apiClient,
		time.Duration(cfg.TagIntervalMS)*time.Millisecond)

	var source rpp.PageSource
	if cfg.Headless {
		source = rpp.NewHeadlessSource(cfg.AdSearchURL)
	} else {
		source = rpp.NewStaticSource(cfg.AdSearchURL, buildPageClient())
	}

	return &runner.Runner{
		Store:   st,
		Organic: ichiba.NewRankResolver(searchClient, names, cfg.PageSize, cfg.TopSnapshots),
		Ads: rpp.NewRankResolver(rpp.NewScraper(source), cfg.AdRankCeiling,
			time.Duration(cfg.AdIntervalMS)*time.Millisecond),
		MaxPages: cfg.MaxPages,
		AdPages:  cfg.AdMaxPages,
	}
}

func requireAppID() error {
	if cfg.AppID == "" {
		return fmt.Errorf("application id not set (use --app-id or RAKURANK_APP_ID)")
	}
	return nil
}
