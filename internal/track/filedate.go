package track

import (
	"fmt"
	"regexp"
	"time"
)

// Filename patterns the converter recognizes, most specific first.
var (
	sdDatePattern      = regexp.MustCompile(`(?i)Programa_SD_(\d{1,2})_(\d{1,2})_\d{4}_`)
	cbDatePattern      = regexp.MustCompile(`(?i)Env[íi]os\s+CBs?\s+(\d{1,2})-(\d{1,2})`)
	genericDatePattern = regexp.MustCompile(`(\d{1,2})_(\d{1,2})`)
)

// ExtractFileDate pulls a day/month pair out of an uploaded filename
// and formats it as YYYY-MM-DD, assuming the current year. It returns
// an empty string when no pattern matches, in which case the namer
// falls back to the download date.
func ExtractFileDate(filename string, now time.Time) string {
	for _, pattern := range []*regexp.Regexp{sdDatePattern, cbDatePattern, genericDatePattern} {
		if m := pattern.FindStringSubmatch(filename); m != nil {
			return fmt.Sprintf("%d-%s-%s", now.Year(), pad2(m[2]), pad2(m[1]))
		}
	}
	return ""
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
