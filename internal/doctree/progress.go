package doctree

// ProgressReporter provides callbacks for reporting build progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnExtractionStart is called before extracting briefs.
	OnExtractionStart(totalFiles int)

	// OnFileProcessed is called after each file is processed.
	OnFileProcessed(fileName string)

	// OnComplete is called when the tree has been assembled.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(files int)    {}
func (n *NoOpProgressReporter) OnExtractionStart(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileProcessed(fileName string)  {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)          {}
