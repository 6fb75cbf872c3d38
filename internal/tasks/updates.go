package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	QueueExports Phase = iota
	ExportComparison
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case QueueExports:
		return "queue_exports"
	case ExportComparison:
		return "export_comparison"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// sendProgress delivers update without blocking. A nil channel drops it.
func sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}

func queueExportsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   QueueExports,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Exporting %d saved comparisons...", total),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportComparison,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportComparison,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func manifestUpdate(total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Manifest written to %s", path),
	}
}
