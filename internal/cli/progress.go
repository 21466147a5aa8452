package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mvp-joe/doctree/internal/doctree"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements progress reporting with a progress bar.
// Safe for concurrent use.
type CLIProgressReporter struct {
	mu             sync.Mutex
	out            io.Writer
	fileBar        *progressbar.ProgressBar
	totalFiles     int
	processedFiles int
}

// NewCLIProgressReporter creates a reporter writing to out, normally stderr
// so that rendered output on stdout stays clean.
func NewCLIProgressReporter(out io.Writer) *CLIProgressReporter {
	return &CLIProgressReporter{out: out}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	fmt.Fprintln(c.out, "Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	fmt.Fprintf(c.out, "Scanning %s files\n", formatNumber(files))
}

func (c *CLIProgressReporter) OnExtractionStart(totalFiles int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalFiles = totalFiles
	c.processedFiles = 0

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Extracting briefs"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(fileName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fileBar != nil {
		c.processedFiles++
		_ = c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(stats *doctree.Stats) {
	c.mu.Lock()
	if c.fileBar != nil {
		_ = c.fileBar.Finish()
		c.fileBar = nil
	}
	c.mu.Unlock()

	fmt.Fprintf(c.out, "✓ Tree complete: %s briefs from %s files in %.1fs\n",
		formatNumber(stats.Briefs),
		formatNumber(stats.FilesScanned),
		stats.ProcessingTimeSeconds)
	fmt.Fprintf(c.out, "  Without brief: %s\n", formatNumber(stats.Missing))
	fmt.Fprintf(c.out, "  Unreadable:    %s\n", formatNumber(stats.Unreadable))
}

// formatNumber formats an integer with thousands separators.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var out []byte
	pre := len(s) % 3
	if pre > 0 {
		out = append(out, s[:pre]...)
	}
	for i := pre; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
