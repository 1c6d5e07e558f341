// Package command parses the deterministic editing grammar into tagged
// commands. Raw text never travels past this boundary; everything
// downstream switches on Command.Kind.
package command

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidCommand is returned when text matches no grammar rule.
// The caller surfaces Guidance to the user; state is never mutated.
var ErrInvalidCommand = errors.New("command: text matches no known form")

// Guidance is the help text shown when a command cannot be parsed.
const Guidance = "Try one of:\n" +
	"  remove silence > 2                remove silent parts longer than 2 seconds\n" +
	"  tighten silence > 2 leave 150ms   shorten long silences, keeping a 150ms pad\n" +
	"  cut 12.5 - 14.0                   cut a specific time range"

// Kind tags the parsed command variant.
type Kind int

const (
	// KindInvalid marks text that matched no rule.
	KindInvalid Kind = iota
	// KindSilenceRemove removes silences longer than Threshold seconds.
	KindSilenceRemove
	// KindSilenceTighten shortens silences longer than Threshold
	// seconds down to a PadMs pad.
	KindSilenceTighten
	// KindManualCut cuts the literal range [Start, End).
	KindManualCut
)

// Command is the tagged variant produced by Parse. Only the fields
// relevant to Kind are populated.
type Command struct {
	Kind Kind

	// Threshold is the minimum silence length in seconds for the
	// silence commands.
	Threshold float64

	// PadMs is the pad kept at each end of a tightened silence.
	PadMs float64

	// HasPad reports whether the leave clause was written out rather
	// than defaulted, so callers can substitute their own default.
	HasPad bool

	// Start and End are the literal bounds of a manual cut, already
	// ordered.
	Start float64
	End   float64

	// Reason carries guidance text when Kind is KindInvalid.
	Reason string
}

const number = `(\d+(?:\.\d+)?)`

var (
	tightenRe = regexp.MustCompile(`(?i)^tighten\s+silence\s*>\s*` + number + `(?:\s+leave\s+` + number + `\s*ms)?$`)
	removeRe  = regexp.MustCompile(`(?i)^(?:remove|cut)\s+silence\s*>\s*` + number + `$`)
	cutRe     = regexp.MustCompile(`(?i)^cut\s+` + number + `\s*-\s*` + number + `$`)
)

// DefaultPadMs is used when a tighten command omits the leave clause.
const DefaultPadMs = 150

// Parse matches text against the grammar. Unparseable input yields a
// KindInvalid command carrying guidance; Parse itself never errors so
// callers decide how to surface the rejection.
func Parse(text string) Command {
	text = strings.TrimSpace(text)

	if m := tightenRe.FindStringSubmatch(text); m != nil {
		threshold, _ := strconv.ParseFloat(m[1], 64)
		padMs := float64(DefaultPadMs)
		hasPad := m[2] != ""
		if hasPad {
			padMs, _ = strconv.ParseFloat(m[2], 64)
		}
		return Command{Kind: KindSilenceTighten, Threshold: threshold, PadMs: padMs, HasPad: hasPad}
	}

	if m := removeRe.FindStringSubmatch(text); m != nil {
		threshold, _ := strconv.ParseFloat(m[1], 64)
		return Command{Kind: KindSilenceRemove, Threshold: threshold}
	}

	if m := cutRe.FindStringSubmatch(text); m != nil {
		a, _ := strconv.ParseFloat(m[1], 64)
		b, _ := strconv.ParseFloat(m[2], 64)
		return Command{Kind: KindManualCut, Start: min(a, b), End: max(a, b)}
	}

	return Command{Kind: KindInvalid, Reason: Guidance}
}
