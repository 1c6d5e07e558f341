package cutlist

import (
	"fmt"
	"math"
	"strings"
)

// defaultFPS is assumed when the source frame rate is unknown, which
// happens for audio-only sources.
const defaultFPS = 30.0

// reelNameLength is the CMX 3600 reel name limit.
const reelNameLength = 8

// EDL renders the keep segments as a CMX-3600-style edit decision
// list: one cut event per keep segment, source timecodes from the
// original media, record timecodes running continuously.
func EDL(l List, title string, fps float64) string {
	if fps <= 0 {
		fps = defaultFPS
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\n", title)
	b.WriteString("FCM: NON-DROP FRAME\n\n")

	reel := sanitizeReelName(title)
	record := 0.0
	for i, keep := range l.Keeps {
		length := keep.End - keep.Start
		fmt.Fprintf(&b, "%03d  %-8s V     C        %s %s %s %s\n",
			i+1,
			reel,
			timecode(keep.Start, fps),
			timecode(keep.End, fps),
			timecode(record, fps),
			timecode(record+length, fps),
		)
		record += length
	}

	return b.String()
}

// timecode formats seconds as HH:MM:SS:FF at the given frame rate.
func timecode(seconds, fps float64) string {
	frames := int(math.Round(seconds * fps))
	fpsInt := int(math.Round(fps))
	if fpsInt < 1 {
		fpsInt = 1
	}

	ff := frames % fpsInt
	totalSeconds := frames / fpsInt
	ss := totalSeconds % 60
	mm := (totalSeconds / 60) % 60
	hh := totalSeconds / 3600

	return fmt.Sprintf("%02d:%02d:%02d:%02d", hh, mm, ss, ff)
}

// sanitizeReelName maps a title to a reel name: alphanumerics and
// underscores only, truncated to the CMX limit, never empty.
func sanitizeReelName(name string) string {
	name = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, name)

	if len(name) > reelNameLength {
		name = name[:reelNameLength]
	}
	if name == "" {
		name = "AX"
	}
	return name
}
