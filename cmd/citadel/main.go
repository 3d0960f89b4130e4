package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/citadel/internal/adapter"
	"github.com/mmcdole/citadel/internal/adapter/source"
	"github.com/mmcdole/citadel/internal/catalog"
	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/paging"
	"github.com/mmcdole/citadel/internal/search"
	"github.com/mmcdole/citadel/internal/tui"
	"github.com/mmcdole/citadel/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var (
		showVersion bool
		configPath  string
		initConfig  bool
		find        string
		plain       bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.BoolVar(&initConfig, "init-config", false, "write the default config file and exit")
	flag.StringVar(&find, "find", "", "print first-page characters matching a name")
	flag.BoolVar(&plain, "plain", false, "print the first page instead of starting the TUI")
	flag.Parse()

	if showVersion {
		fmt.Printf("citadel %s\n", Version)
		return
	}

	if initConfig {
		path, err := adapter.SaveConfig(adapter.DefaultConfig(), configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ Configuration written to %s\n", path)
		return
	}

	interactive := !plain && find == "" && term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(configPath, interactive, find); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, interactive bool, find string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting citadel", "version", Version, "interactive", interactive)

	client, err := source.NewClientFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loader := paging.NewLoader(client, logger)
	projector := catalog.NewProjector(ctx, loader, paging.Config{
		PageSize:         cfg.Paging.PageSize,
		PrefetchDistance: cfg.Paging.PrefetchDistance,
	}, logger)
	defer projector.Close()

	if !interactive {
		return runPlain(ctx, projector, find, os.Stdout)
	}

	model := tui.NewModel(projector, cfg.UI.ShowStatus)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	model.Detach()

	logger.Info("shutting down")
	return nil
}

func loadConfig(path string) (*adapter.Config, error) {
	if path != "" {
		return adapter.LoadConfigFile(path)
	}
	return adapter.LoadConfig()
}

// runPlain waits for the flat snapshot and prints it, one character per line
func runPlain(ctx context.Context, projector *catalog.Projector, find string, out io.Writer) error {
	snap, err := awaitSnapshot(ctx, projector)
	if err != nil {
		return err
	}
	if snap.HasError() {
		return fmt.Errorf("failed to load characters: %s", snap.Error)
	}

	characters := snap.Characters
	if find != "" {
		characters = search.Suggest(find, characters, 0)
		if len(characters) == 0 {
			fmt.Fprintf(out, "no characters matching %q\n", find)
			return nil
		}
	}

	for _, c := range characters {
		printCharacter(out, c)
	}
	return nil
}

// awaitSnapshot blocks until the snapshot leaves the loading state. A spinner
// is drawn on stderr when it is a terminal.
func awaitSnapshot(ctx context.Context, projector *catalog.Projector) (catalog.Snapshot, error) {
	updates, cancel := projector.SubscribeSnapshot(1)
	defer cancel()

	showSpinner := term.IsTerminal(int(os.Stderr.Fd()))
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				return catalog.Snapshot{}, fmt.Errorf("catalog closed before loading")
			}
			if snap.Phase() == "loaded" || snap.Phase() == "error" {
				if showSpinner {
					fmt.Fprint(os.Stderr, clearSpinnerLine)
				}
				return snap, nil
			}

		case <-ticker.C:
			if showSpinner {
				fmt.Fprintf(os.Stderr, "\r%s Loading characters...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
				frame++
			}

		case <-ctx.Done():
			if showSpinner {
				fmt.Fprint(os.Stderr, clearSpinnerLine)
			}
			return catalog.Snapshot{}, ctx.Err()
		}
	}
}

func printCharacter(out io.Writer, c domain.Character) {
	fmt.Fprintf(out, "%4d  %-32s  %s\n", c.ID, c.GetTitle(), c.GetDescription())
}
