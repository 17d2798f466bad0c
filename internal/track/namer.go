package track

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/shipgen/shipctl/pkg/models"
)

// Clock supplies the current time. The namer only consults it when a
// job carries no file date, which is the single impure branch of the
// naming algorithm; tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Namer derives the local filename for a result artifact. The same
// (job, artifact path) pair always yields the same name, and the name
// shown to the user is the name written to disk.
type Namer struct {
	clock Clock
}

// NewNamer returns a namer backed by the wall clock.
func NewNamer() *Namer {
	return &Namer{clock: systemClock{}}
}

// NewNamerWithClock returns a namer with an injected clock.
func NewNamerWithClock(clock Clock) *Namer {
	return &Namer{clock: clock}
}

// Name builds "{YYYYMMDD}_{type}_{description}.{ext}" for one artifact.
func (n *Namer) Name(job models.Job, artifactPath string) string {
	ext := strings.TrimPrefix(path.Ext(artifactPath), ".")
	if ext == "" {
		ext = "xml"
	}
	return fmt.Sprintf("%s_%s_%s.%s", n.dateSegment(job), typeSegment(job), descriptionSegment(ext), ext)
}

func (n *Namer) dateSegment(job models.Job) string {
	if job.FileDate != "" {
		var b strings.Builder
		for _, r := range job.FileDate {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return n.clock.Now().Format("20060102")
}

// typeSegment prefers the recorded file type and otherwise infers one
// from the uploaded filename. Marker priority matches the converter:
// beer before sd before cb.
func typeSegment(job models.Job) string {
	if job.FileType != "" {
		return job.FileType
	}
	return InferFileType(job.Filename)
}

// InferFileType classifies an uploaded filename by its known markers.
func InferFileType(filename string) string {
	upper := strings.ToUpper(filename)
	switch {
	case strings.Contains(upper, "BEER"):
		return "beer"
	case strings.Contains(upper, "SD"):
		return "sd"
	case strings.Contains(upper, "CB"):
		return "cb"
	default:
		return "general"
	}
}

func descriptionSegment(ext string) string {
	switch strings.ToLower(ext) {
	case "xlsx", "xls", "xlsm":
		return "placas"
	case "txt":
		return "reporte"
	default:
		return "rutas"
	}
}
