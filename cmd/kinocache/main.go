package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/kinocache/internal/config"
	"github.com/mmcdole/kinocache/internal/diskcache"
	"github.com/mmcdole/kinocache/internal/domain"
	"github.com/mmcdole/kinocache/internal/log"
	"github.com/mmcdole/kinocache/internal/mediaserver/jellyfin"
	"github.com/mmcdole/kinocache/internal/service"
	"github.com/mmcdole/kinocache/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

type options struct {
	configFile string
	runtimeDir string
	listing    string
	search     string
	inspect    bool
}

func main() {
	var (
		showVersion bool
		opts        options
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&opts.configFile, "config", "", "config file (default: search $XDG_CONFIG_HOME/kinocache)")
	flag.StringVar(&opts.runtimeDir, "runtime-dir", "", "directory for the cache files")
	flag.StringVar(&opts.listing, "listing", "", "Jellyfin /Items JSON file to load")
	flag.StringVar(&opts.search, "search", "", "print listing items matching this query")
	flag.BoolVar(&opts.inspect, "inspect", false, "print the caches left in the runtime directory and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("kinocache %s\n", Version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// Load configuration
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting kinocache", "version", Version, "runtime_dir", cfg.Cache.RuntimeDir)

	manager := diskcache.NewManager(cfg.Cache.RuntimeDir, logger)
	if opts.inspect {
		return inspect(manager, os.Stdout)
	}

	if err := manager.Init(); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer func() {
		if err := manager.Clear(); err != nil {
			logger.Warn("failed to clear cache", "error", err)
		}
	}()
	if stale := manager.StaleFiles(); len(stale) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: overwrote cache files from another session in %s\n", manager.RuntimeDir())
	}

	librarySvc := service.NewLibraryService(manager, logger)
	if opts.listing != "" {
		items, err := readListing(opts.listing)
		if err != nil {
			return err
		}
		if err := librarySvc.Load(items, nil); err != nil {
			return fmt.Errorf("failed to load listing: %w", err)
		}
	}

	if opts.search != "" {
		return printSearch(librarySvc, opts.search, os.Stdout)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return printListing(librarySvc, os.Stdout)
	}

	// Run the TUI
	p := tea.NewProgram(
		tui.NewModel(librarySvc),
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	final, err := p.Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		logger.Error("cache error", "error", m.Err())
		return m.Err()
	}

	logger.Info("shutting down")
	return nil
}

func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadConfigFile(opts.configFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	// the flag can stand in for a runtime directory the environment cannot provide
	if errors.Is(err, domain.ErrNoRuntimeDir) && cfg != nil && opts.runtimeDir != "" {
		err = nil
	}
	if err != nil {
		return nil, err
	}
	if opts.runtimeDir != "" {
		cfg.Cache.RuntimeDir = opts.runtimeDir
	}
	return cfg, nil
}

func readListing(path string) ([]*domain.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open listing: %w", err)
	}
	defer f.Close()

	raw, err := jellyfin.DecodeItems(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	items, err := jellyfin.MapItems(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// inspect prints whatever an earlier session left in the runtime directory
// and leaves the files in place
func inspect(manager *diskcache.Manager, w io.Writer) error {
	if err := manager.Recover(); err != nil {
		return fmt.Errorf("failed to recover cache: %w", err)
	}
	defer manager.Close()

	lib := service.NewLibraryService(manager, nil)
	fmt.Fprintf(w, "payload: %d items\n", lib.Count())
	if err := printListing(lib, w); err != nil {
		return err
	}

	queue, err := lib.Queue()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "playlist: %d items\n", len(queue))
	for i, item := range queue {
		printItem(w, i+1, item)
	}
	return nil
}

func printListing(lib *service.LibraryService, w io.Writer) error {
	items, err := lib.Items()
	if err != nil {
		return err
	}
	for i, item := range items {
		printItem(w, i+1, item)
	}
	return nil
}

func printSearch(lib *service.LibraryService, query string, w io.Writer) error {
	matches, err := lib.Search(query)
	if err != nil {
		return err
	}
	for _, n := range matches {
		item, err := lib.Item(n)
		if err != nil {
			return err
		}
		printItem(w, n, item)
	}
	return nil
}

func printItem(w io.Writer, n int, item *domain.Item) {
	if item.RuntimeTicks > 0 {
		fmt.Fprintf(w, "%4d  %-12s %s (%s)\n", n, item.Type, item.Name, item.FormattedDuration())
		return
	}
	fmt.Fprintf(w, "%4d  %-12s %s\n", n, item.Type, item.Name)
}
