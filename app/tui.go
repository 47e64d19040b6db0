package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sys/unix"

	"find-papers/search"
)

var startWall time.Time
var progressChan = make(chan progressMsg, 64)
var latestProgress progressMsg
var haveLatestProgress bool
var progressMu sync.Mutex

// progressMsg updates the top progress line while loading.
// Format in View: "⏳ {Stage} [num/total]: filename"
type progressMsg struct {
	Stage string
	Count int
	Total int
	Path  string
}

// Styles (exported styling used by CLI usage/version output too)
var (
	appStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7aa2f7")).
			Align(lipgloss.Center)

	subHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a9b1d6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")).
			Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))
)

type model struct {
	// Results and paging
	matches       []search.Match
	currentPage   int
	totalPages    int
	contentScroll int

	// progress totals
	totalFiles int

	// Session and timing
	stats      search.Stats
	searchTime time.Duration
	searchErr  error
	quitting   bool
	loading    bool

	// Window size
	width  int
	height int

	// Search parameters
	queries      []search.Query
	root         string
	contextWords int
	workers      int
	fileTimeout  time.Duration
	zoteroDir    string

	// UI state
	confirmSelected string // "yes" or "no"
	memUsageText    string // e.g., " • RAM: XXX MB • CPU: YY%"
	exportNote      string // set after 'e' writes the report

	// Background progress (optional)
	progressText string // e.g., "⏳ Processing..."
}

func (m model) Init() tea.Cmd {
	// Start polling progress and kick off the background search immediately.
	return tea.Batch(pollProgress(), m.runSearch(), m.memUsageTick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// While loading, only allow quit
		if m.loading {
			switch msg.String() {
			case "q", "ctrl+c":
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

		// Selection navigation for highlighted buttons
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "left", "h":
			m.confirmSelected = "yes"
			return m, nil
		case "right", "l":
			m.confirmSelected = "no"
			return m, nil

		case "enter":
			if m.confirmSelected == "no" {
				m.quitting = true
				return m, tea.Quit
			}
			// default/"yes": advance or quit if at end
			if m.currentPage < m.totalPages-1 {
				m.currentPage++
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit

		// Legacy keys
		case "y", "space":
			if m.currentPage < m.totalPages-1 {
				m.currentPage++
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case "n":
			if m.currentPage < m.totalPages-1 {
				m.currentPage++
			}
			m.contentScroll = 0
			return m, nil
		case "p":
			if m.currentPage > 0 {
				m.currentPage--
			}
			m.contentScroll = 0
			return m, nil

		case "home":
			m.currentPage = 0
			m.contentScroll = 0
			return m, nil
		case "end":
			m.currentPage = m.totalPages - 1
			m.contentScroll = 0
			return m, nil
		case "e":
			if len(m.matches) > 0 {
				return m, m.exportResults()
			}
			return m, nil
		case "up", "k":
			m.contentScroll--
			return m, nil
		case "down", "j":
			m.contentScroll++
			return m, nil
		case "pgup":
			m.contentScroll -= 5
			return m, nil
		case "pgdown":
			m.contentScroll += 5
			return m, nil
		}
		return m, nil

	case searchResultMsg:
		// Search completed: store results, compute pages, stop loading
		m.matches = msg.matches
		m.stats = msg.stats
		m.searchErr = msg.err
		m.confirmSelected = "yes"
		m.searchTime = msg.searchTime
		m.totalPages = len(m.matches)
		if m.totalPages == 0 {
			m.totalPages = 1
		}
		m.loading = false
		return m, m.memUsageTick()

	case exportDoneMsg:
		if msg.err != nil {
			m.exportNote = errorStyle.Render("Export failed: " + msg.err.Error())
		} else {
			m.exportNote = successStyle.Render("Exported to " + msg.path)
		}
		return m, nil

	case memUsageMsg:
		m.memUsageText = msg.Text
		return m, m.memUsageTick()

	case progressMsg:
		// Update the top progress line (only shown while loading)
		p := msg.Path
		// keep relative path
		m.totalFiles = msg.Total
		m.progressText = fmt.Sprintf("%s [%d/%d]: %s", titleStage(msg.Stage), msg.Count, msg.Total, p)
		// Keep polling progress while loading
		return m, pollProgress()

	case progressTick:
		// Periodic poll: read the most recent progress snapshot (mutex-protected)
		progressMu.Lock()
		lp := latestProgress
		hv := haveLatestProgress
		progressMu.Unlock()

		if hv {
			p := lp.Path
			// keep relative path
			m.totalFiles = lp.Total
			m.progressText = fmt.Sprintf("%s [%d/%d]: %s", titleStage(lp.Stage), lp.Count, lp.Total, p)
		}
		return m, pollProgress()
	}
	return m, nil
}

func (m model) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 120
	}
	if height <= 0 {
		height = 30
	}

	if m.quitting {
		return "Goodbye!\n"
	}

	// Build header lines
	var headerLines []string

	// Title
	// ASCII PAPERS logo with version
	logoTop := " █▀█ ▄▀█ █▀█ █▀▀ █▀█ █▀"
	logoBottom := fmt.Sprintf(" █▀▀ █▀█ █▀▀ ██▄ █▀▄ ▄█  v%s", version)
	if len(logoTop) < len(logoBottom) {
		logoTop += strings.Repeat(" ", len(logoBottom)-len(logoTop))
	}
	logo := lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Align(lipgloss.Left).Render(logoTop + "\n" + logoBottom)
	headerLines = append(headerLines, "")
	headerLines = append(headerLines, logo)
	headerLines = append(headerLines, "")

	// Search terms (parallel plain, regex slashed, filters tagged)
	{
		var terms []string
		for _, q := range m.queries {
			t := fmt.Sprintf("%q", q.Text)
			if q.IsRegex {
				t = "/" + q.Text + "/"
			}
			if q.Role == search.RoleFilter {
				t += " (filter)"
			}
			terms = append(terms, t)
		}
		headerLines = append(headerLines, subHeaderStyle.Render("🔍 Searching: "+strings.Join(terms, " ")))
	}

	// Total matches at the top
	if !m.loading {
		headerLines = append(headerLines, successStyle.Render(fmt.Sprintf("📋 Matched: %s matches in %s files",
			search.FormatNumber(m.stats.TotalMatches), search.FormatNumber(m.stats.FilesMatched))))
	}

	// Corpus root and Zotero library
	targetPrefix := "📁 Corpus: "
	targetStyled := lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	headerLines = append(headerLines, targetStyled.Render(wrapTextWithIndent(targetPrefix, m.root, width-4)))
	zoteroDesc := m.zoteroDir
	if zoteroDesc == "" {
		zoteroDesc = "disabled"
	}
	headerLines = append(headerLines, infoStyle.Render("🔗 Zotero: "+zoteroDesc))

	// Engine line with cores + RAM/CPU live
	engine := fmt.Sprintf("⚙️ Engine: Workers %d%s", m.workers, m.memUsageText)
	engineStyled := lipgloss.NewStyle().Foreground(lipgloss.Color("#bb9af7"))
	headerLines = append(headerLines, engineStyled.Render(engine))

	// Elapsed search time (always show combined line; freeze after completion)
	var minutes float64
	processed := m.totalFiles
	if m.loading {
		minutes = time.Since(startWall).Minutes()
	} else {
		minutes = m.searchTime.Minutes()
		processed = m.stats.FilesProcessed
	}
	elapsed := fmt.Sprintf("⏱️ Searched: %.2f minutes • Matched: %d of %d files", minutes, m.stats.FilesMatched, processed)
	elapsedStyled := lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
	headerLines = append(headerLines, elapsedStyled.Render(elapsed))

	// Header height (count rendered lines accurately)
	searchInfo := strings.Join(headerLines, "\n")
	headerHeight := strings.Count(searchInfo, "\n") + 1
	// Account explicitly for header, progress, bottom status, and footer heights
	progressHeight := 1 // always reserve progress line space to keep box position stable

	bottomStatusHeight := 1 // reserve a single line for bottom status to reduce blank space

	footerHeight := 1 // footer only

	// Top progress line while loading (above the box)
	var parts []string
	parts = append(parts, searchInfo)
	if m.loading {
		var txt string
		if m.progressText != "" {
			// Expect m.progressText formatted as "[num/total]: filename"
			txt = fmt.Sprintf("⏳ %s", m.progressText)
		} else {
			txt = "⏳ Processing"
		}
		progressStyled := lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff"))
		parts = append(parts, progressStyled.Render(txt))
	} else {
		// Reserve the progress row to keep the box fixed when not loading
		parts = append(parts, "")
	}

	// Main content box
	var boxContent string
	if m.loading {
		boxContent = "Searching..."
	} else if m.searchErr != nil {
		boxContent = errorStyle.Render("Search failed: " + m.searchErr.Error())
	} else if len(m.matches) == 0 {
		boxContent = warningStyle.Render("No matches found.")
	} else {
		// Display current match
		match := m.matches[m.currentPage]
		boxContent = fmt.Sprintf("File: %s (Page %d)\n\n", match.FilePath, match.PageNumber)

		// Add bibliographic metadata if the file is a library attachment
		if match.ZoteroMetadata != nil {
			meta := match.ZoteroMetadata
			boxContent += fmt.Sprintf("Citekey: @%s\n", meta.CiteKey)
			if meta.Title != "" {
				boxContent += fmt.Sprintf("Title: %s\n", meta.Title)
			}
			if meta.Authors != "" {
				boxContent += fmt.Sprintf("Authors: %s\n", meta.Authors)
			}
			if meta.Year != "" {
				boxContent += fmt.Sprintf("Year: %s\n", meta.Year)
			}
			boxContent += fmt.Sprintf("Link: %s\n", meta.Link)
			boxContent += "\n"
		}

		// Context with the matched span in the query's highlight color
		label := subHeaderStyle.Render("Context: ")
		innerWidth := (width - 4) - 6
		if innerWidth < 10 {
			innerWidth = 10
		}
		boxContent += wrapTextWithIndent(label, renderContext(match), innerWidth) + "\n\n"

		// Page indicator
		boxContent += fmt.Sprintf("Match %d of %d", m.currentPage+1, len(m.matches))
	}

	boxOuterWidth := width - 4
	chromeHeight := 4
	contentHeight := height - headerHeight - progressHeight - bottomStatusHeight - footerHeight - chromeHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	// Window the box content according to contentScroll to enable vertical scrolling
	lines := strings.Split(boxContent, "\n")
	if m.contentScroll < 0 {
		m.contentScroll = 0
	}
	maxStart := 0
	if len(lines) > contentHeight {
		maxStart = len(lines) - contentHeight
	}
	if m.contentScroll > maxStart {
		m.contentScroll = maxStart
	}
	start := m.contentScroll
	end := start + contentHeight
	if end > len(lines) {
		end = len(lines)
	}
	window := strings.Join(lines[start:end], "\n")
	parts = append(parts, appStyle.Width(boxOuterWidth).Height(contentHeight).Render(window))

	// Non-scrolling bottom status (found count + buttons)
	var bottomStatus string
	if !m.loading && len(m.matches) > 0 {
		// Inline highlighted buttons (no border boxes)
		yesSel := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1a1b26")).
			Background(lipgloss.Color("#9ece6a")).
			Padding(0, 1)
		yesUn := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a")).
			Padding(0, 1)
		noSel := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#c0caf5")).
			Background(lipgloss.Color("#414868")).
			Padding(0, 1)
		noUn := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89")).
			Padding(0, 1)

		var yesBtn, noBtn string
		if m.confirmSelected == "no" {
			yesBtn = yesUn.Render("[ Yes ]")
			noBtn = noSel.Render("[ No ]")
		} else {
			yesBtn = yesSel.Render("[ Yes ]")
			noBtn = noUn.Render("[ No ]")
		}

		cont := infoStyle.Render("Continue? ") + yesBtn + "    " + noBtn
		if m.exportNote != "" {
			cont += "    " + m.exportNote
		}
		bottomStatus = cont
	}

	if bottomStatus != "" {
		parts = append(parts, bottomStatus)
	} else {
		// Reserve the bottom status row to keep the box fixed when no status is shown
		parts = append(parts, "")
	}

	// Footer line
	quitInstruction := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Align(lipgloss.Center).
		Render("🔚 'ENTER' continue • 'q' quit • p: previous • n: next • e: export report")
	parts = append(parts, quitInstruction)

	return strings.Join(parts, "\n")
}

// Background search command (now exposed on model)
func (m model) runSearch() tea.Cmd {
	// Prepare engine and wire progress callback
	eng, err := search.NewEngine(search.Config{
		Queries:      m.queries,
		ContextWords: m.contextWords,
		ZoteroDir:    m.zoteroDir,
		Workers:      m.workers,
		FileTimeout:  m.fileTimeout,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnProgress: func(stage string, processed, total int, path string) {
			progressMu.Lock()
			latestProgress = progressMsg{Stage: stage, Count: processed, Total: total, Path: path}
			haveLatestProgress = true
			progressMu.Unlock()

			// also push to the progress channel; drop oldest if full to keep latest flowing
			msg := progressMsg{Stage: stage, Count: processed, Total: total, Path: path}
			select {
			case progressChan <- msg:
			default:
				select {
				case <-progressChan:
				default:
				}
				select {
				case progressChan <- msg:
				default:
				}
			}
		},
	})
	if err != nil {
		return func() tea.Msg { return searchResultMsg{err: err} }
	}

	// Emit initial progress and then run the search
	return tea.Batch(
		func() tea.Msg { return progressMsg{Stage: "scanning", Count: 0, Total: 0, Path: ""} },
		func() tea.Msg {
			start := time.Now()
			if targetIsFile(m.root) {
				matches, err := eng.ExecuteFile(m.root)
				stats := search.Stats{
					FilesProcessed: 1,
					TotalMatches:   len(matches),
					ElapsedTime:    time.Since(start),
				}
				if len(matches) > 0 {
					stats.FilesMatched = 1
				}
				return searchResultMsg{
					matches:    matches,
					stats:      stats,
					searchTime: time.Since(start),
					err:        err,
				}
			}
			matches, stats, err := eng.Execute(context.Background(), m.root)
			return searchResultMsg{
				matches:    matches,
				stats:      stats,
				searchTime: time.Since(start),
				err:        err,
			}
		},
	)
}

// exportResults writes the Markdown report next to the working directory.
func (m model) exportResults() tea.Cmd {
	return func() tea.Msg {
		path := "papers-results.md"
		err := search.WriteMarkdown(m.matches, path)
		return exportDoneMsg{path: path, err: err}
	}
}

// renderContext rebuilds the excerpt with the matched span highlighted in
// the query's color. The span is rendered word by word so line wrapping
// never splits a styled run.
func renderContext(match search.Match) string {
	hi := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1a1b26")).
		Background(lipgloss.Color(match.HighlightColor)).
		Bold(true)
	words := strings.Fields(match.MatchedText)
	for i, w := range words {
		words[i] = hi.Render(w)
	}
	var parts []string
	if match.ContextBefore != "" {
		parts = append(parts, match.ContextBefore)
	}
	parts = append(parts, strings.Join(words, " "))
	if match.ContextAfter != "" {
		parts = append(parts, match.ContextAfter)
	}
	return "..." + strings.Join(parts, " ") + "..."
}

func titleStage(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func wrapTextWithIndent(prefix, text string, width int) string {
	prefixWidth := lipgloss.Width(prefix)
	indent := strings.Repeat(" ", prefixWidth)
	wrapped := lipgloss.NewStyle().Width(width - prefixWidth).Render(text)
	return prefix + strings.ReplaceAll(wrapped, "\n", "\n"+indent)
}

func (m model) memUsageTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		// Sample memory and CPU
		mem, cpu := sampleMemoryAndCPU()
		return memUsageMsg{Text: fmt.Sprintf(" • Heap %s • RSS %s • CPU %5.1f%%", formatBytes(mem.heap), formatBytes(mem.rss), cpu)}
	})
}

func pollProgress() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(time.Time) tea.Msg {
		// Always trigger a poll tick; Update will drain and coalesce newest progress message
		return progressTick{}
	})
}

var lastCPUWall time.Time
var lastCPUProc time.Duration
var haveCPUSample bool

func sampleMemoryAndCPU() (mem struct{ heap, rss uint64 }, cpu float64) {
	// Sample memory
	var rusage unix.Rusage
	_ = unix.Getrusage(unix.RUSAGE_SELF, &rusage)
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	mem.heap = ms.HeapAlloc
	mem.rss = uint64(rusage.Maxrss * 1024) // KB to bytes

	// Sample CPU (process user+sys time from rusage)
	nowWall := time.Now()
	user := time.Duration(rusage.Utime.Sec)*time.Second + time.Duration(rusage.Utime.Usec)*time.Microsecond
	sys := time.Duration(rusage.Stime.Sec)*time.Second + time.Duration(rusage.Stime.Usec)*time.Microsecond
	nowProc := user + sys
	if haveCPUSample {
		wallDiff := nowWall.Sub(lastCPUWall)
		procDiff := nowProc - lastCPUProc
		if wallDiff > 0 {
			cpu = procDiff.Seconds() / wallDiff.Seconds() * 100
			if cpu < 0 {
				cpu = 0
			}
		}
	}
	lastCPUWall = nowWall
	lastCPUProc = nowProc
	haveCPUSample = true
	return
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// Messages for TUI updates
type searchResultMsg struct {
	matches    []search.Match
	stats      search.Stats
	searchTime time.Duration
	err        error
}

type memUsageMsg struct {
	Text string
}

type exportDoneMsg struct {
	path string
	err  error
}

type progressTick struct{}
