package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/shipgen/shipctl/internal/notify"
	"github.com/shipgen/shipctl/pkg/models"
)

// statusCell renders a status as a colored badge+label table cell.
func statusCell(s models.Status) string {
	d := s.Display()
	return d.Color.Sprintf("%s %s", d.Badge, d.Label)
}

func notificationDisplay(t notify.Type) string {
	switch t {
	case notify.TypeSuccess:
		return color.GreenString("✓")
	case notify.TypeWarning:
		return color.YellowString("!")
	case notify.TypeError:
		return color.RedString("✗")
	default:
		return color.CyanString("·")
	}
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func formatSize(size int64) string {
	switch {
	case size <= 0:
		return "-"
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
