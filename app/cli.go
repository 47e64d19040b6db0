package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"find-papers/config"
	"find-papers/search"
)

var version = "0.3"

// Arguments for CLI flags (used to seed the TUI or a headless run)
type Arguments struct {
	Queries      []search.Query
	Root         string
	ContextWords int
	Workers      int
	FileTimeout  time.Duration
	ZoteroDir    string
	ExportPath   string
	JSONOutput   bool
	Verbose      bool
}

// parseArguments parses command line args
func parseArguments(args []string) *Arguments {
	result := &Arguments{
		Root:         ".",
		ContextWords: config.DefaultContextWords,
		Workers:      config.DefaultWorkers(),
		ZoteroDir:    config.DefaultZoteroDir(),
	}

	var parallels, filters []string
	useRegex := false
	caseSensitive := false
	color := config.DefaultHighlightColor

	parsingFilters := false
	expectContext := false
	expectWorkers := false
	expectTimeout := false
	expectRoot := false
	expectZotero := false
	expectColor := false
	expectExport := false

	for _, a := range args {
		if expectContext {
			if n, err := strconv.Atoi(a); err == nil && n >= 0 {
				result.ContextWords = n
			}
			expectContext = false
			continue
		}
		if expectWorkers {
			if n, err := strconv.Atoi(a); err == nil && n > 0 {
				result.Workers = n
			}
			expectWorkers = false
			continue
		}
		if expectTimeout {
			if n, err := strconv.Atoi(a); err == nil && n >= 0 {
				result.FileTimeout = time.Duration(n) * time.Second
			}
			expectTimeout = false
			continue
		}
		if expectRoot {
			result.Root = a
			expectRoot = false
			continue
		}
		if expectZotero {
			result.ZoteroDir = a
			expectZotero = false
			continue
		}
		if expectColor {
			color = a
			expectColor = false
			continue
		}
		if expectExport {
			result.ExportPath = a
			expectExport = false
			continue
		}
		switch a {
		case "--filter":
			parsingFilters = true
		case "--regex":
			useRegex = true
		case "--case":
			caseSensitive = true
		case "--context", "-context":
			expectContext = true
		case "--workers", "-workers":
			expectWorkers = true
		case "--timeout", "-timeout":
			expectTimeout = true
		case "--in", "-in":
			expectRoot = true
		case "--zotero":
			expectZotero = true
		case "--no-zotero":
			result.ZoteroDir = ""
		case "--color":
			expectColor = true
		case "--export":
			expectExport = true
		case "--json":
			result.JSONOutput = true
		case "--verbose":
			result.Verbose = true
		case "--help", "-h":
			showUsage()
			os.Exit(0)
		case "--version", "-v":
			showVersion()
			os.Exit(0)
		default:
			if parsingFilters {
				filters = append(filters, a)
			} else {
				parallels = append(parallels, a)
			}
		}
	}

	for _, text := range parallels {
		result.Queries = append(result.Queries, search.Query{
			Text:           text,
			IsRegex:        useRegex,
			Role:           search.RoleParallel,
			CaseSensitive:  caseSensitive,
			HighlightColor: color,
		})
	}
	for _, text := range filters {
		result.Queries = append(result.Queries, search.Query{
			Text:           text,
			IsRegex:        useRegex,
			Role:           search.RoleFilter,
			CaseSensitive:  caseSensitive,
			HighlightColor: color,
		})
	}
	return result
}

// showUsage (styled)
func showUsage() {
	fmt.Println()
	// Styled CLI help matching the TUI theme
	logoTop := " █▀█ ▄▀█ █▀█ █▀▀ █▀█ █▀"
	logoBottom := fmt.Sprintf(" █▀▀ █▀█ █▀▀ ██▄ █▀▄ ▄█  v%s", version)
	// Pad lines to equal width and render left-aligned to avoid odd spacing
	if len(logoTop) < len(logoBottom) {
		logoTop += strings.Repeat(" ", len(logoBottom)-len(logoTop))
	} else if len(logoBottom) < len(logoTop) {
		logoBottom += strings.Repeat(" ", len(logoTop)-len(logoBottom))
	}
	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Render(logoTop + "\n" + logoBottom))
	fmt.Println()

	// Usage
	fmt.Println(subHeaderStyle.Render("USAGE"))
	fmt.Println(infoStyle.Render(wrapTextWithIndent("  papers ", "[--in DIR|FILE.pdf] [--regex] [--case] [--context N] [--workers N] <query> ... [--filter <query> ...]", 100)))
	fmt.Println()

	// Flags
	fmt.Println(subHeaderStyle.Render("FLAGS"))
	fmt.Println(infoStyle.Render("  --in PATH        Corpus directory, or a single .pdf file (default .)"))
	fmt.Println(infoStyle.Render("  --filter ...     Queries after this gate documents without being reported"))
	fmt.Println(infoStyle.Render("  --regex          Treat query tokens as regular expressions"))
	fmt.Println(infoStyle.Render("  --case           Case sensitive matching"))
	fmt.Println(infoStyle.Render("  --context N      Context words on each side of a match (default 5)"))
	fmt.Println(infoStyle.Render("  --workers N      Concurrent extractions (default: CPU count)"))
	fmt.Println(infoStyle.Render("  --timeout N      Give up on a file after N seconds (default: no limit)"))
	fmt.Println(infoStyle.Render("  --zotero DIR     Zotero data directory (default ~/Zotero when present)"))
	fmt.Println(infoStyle.Render("  --no-zotero      Skip bibliographic linking"))
	fmt.Println(infoStyle.Render("  --color HEX      Highlight color for matches (default #ffff00)"))
	fmt.Println(infoStyle.Render("  --export FILE    Write a markdown report instead of browsing"))
	fmt.Println(infoStyle.Render("  --json           Print matches as JSON instead of browsing"))
	fmt.Println(infoStyle.Render("  --verbose        Debug logging on stderr (headless modes)"))
	fmt.Println(infoStyle.Render("  --help, -h       Show help"))
	fmt.Println(infoStyle.Render("  --version, -v    Show version"))
	fmt.Println()

	// Examples
	fmt.Println(subHeaderStyle.Render("EXAMPLES"))
	fmt.Println(infoStyle.Render("  papers \"sparse coding\" --in ~/papers"))
	fmt.Println(infoStyle.Render("  papers \"neural network\" --filter transformer attention"))
	fmt.Println(infoStyle.Render("  papers '\\d{4}' --regex --context 8 --export years.md"))
	fmt.Println(infoStyle.Render("  papers annealing --in thesis.pdf --json"))
	fmt.Println()
}

// showVersion
func showVersion() {
	fmt.Println(successStyle.Render("papers v" + version))
}

// Run parses CLI arguments and starts the TUI or a headless run. Returns a
// process exit code.
func Run() int {
	args := parseArguments(os.Args[1:])
	if len(args.Queries) == 0 {
		showUsage()
		return 1
	}

	if args.ExportPath != "" || args.JSONOutput {
		return runHeadless(args)
	}

	// Seed model for TUI
	m := model{
		queries:         args.Queries,
		root:            search.GetAbsolutePath(args.Root),
		contextWords:    args.ContextWords,
		workers:         args.Workers,
		fileTimeout:     args.FileTimeout,
		zoteroDir:       args.ZoteroDir,
		loading:         true,
		confirmSelected: "yes",
	}

	// Start TUI
	startWall = time.Now()
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Println("Error:", err)
		return 1
	}
	return 0
}

// runHeadless executes the search without the TUI and writes the report or
// JSON to the chosen sink.
func runHeadless(args *Arguments) int {
	level := slog.LevelWarn
	if args.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	eng, err := search.NewEngine(search.Config{
		Queries:      args.Queries,
		ContextWords: args.ContextWords,
		ZoteroDir:    args.ZoteroDir,
		Workers:      args.Workers,
		FileTimeout:  args.FileTimeout,
		Logger:       logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		return 1
	}

	var (
		matches []search.Match
		stats   search.Stats
	)
	start := time.Now()
	if targetIsFile(args.Root) {
		matches, err = eng.ExecuteFile(args.Root)
		stats.FilesProcessed = 1
		stats.TotalMatches = len(matches)
		stats.ElapsedTime = time.Since(start)
	} else {
		matches, stats, err = eng.Execute(context.Background(), args.Root)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		return 1
	}

	if args.JSONOutput {
		if matches == nil {
			matches = []search.Match{}
		}
		out, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, renderError(err))
			return 1
		}
		fmt.Println(string(out))
		return 0
	}

	if err := search.WriteMarkdown(matches, args.ExportPath); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		return 1
	}
	summary := fmt.Sprintf("Exported %s matches from %s files to %s (%.1fs)",
		search.FormatNumber(stats.TotalMatches),
		search.FormatNumber(stats.FilesProcessed),
		args.ExportPath,
		stats.ElapsedTime.Seconds())
	if term.IsTerminal(int(os.Stdout.Fd())) {
		summary = successStyle.Render(summary)
	}
	fmt.Println(summary)
	return 0
}

// renderError styles an error for the terminal, plain when piped.
func renderError(err error) string {
	msg := "Error: " + err.Error()
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return errorStyle.Render(msg)
	}
	return msg
}

// targetIsFile reports whether the search root is a single document rather
// than a corpus directory.
func targetIsFile(root string) bool {
	info, err := os.Stat(root)
	return err == nil && info.Mode().IsRegular()
}
