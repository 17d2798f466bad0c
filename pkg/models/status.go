package models

import (
	"github.com/fatih/color"
)

// Status is the lifecycle state of a job. Once a job reaches a terminal
// status (completed or error) no further field may change.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Display describes how a status is rendered.
type Display struct {
	Label string
	Badge string
	Color *color.Color
}

// Display returns the rendering attributes for the status. Every status
// maps to exactly one entry; unknown strings fall back to a neutral one.
func (s Status) Display() Display {
	switch s {
	case StatusPending:
		return Display{Label: "Pending", Badge: "…", Color: color.New(color.FgYellow)}
	case StatusProcessing:
		return Display{Label: "Processing", Badge: "⟳", Color: color.New(color.FgCyan)}
	case StatusCompleted:
		return Display{Label: "Completed", Badge: "✓", Color: color.New(color.FgGreen)}
	case StatusError:
		return Display{Label: "Error", Badge: "✗", Color: color.New(color.FgRed)}
	default:
		return Display{Label: string(s), Badge: "?", Color: color.New(color.FgWhite)}
	}
}
