// Package match resolves drafted player names against a day's MVP table.
//
// Lookup is exact on a normalised key. Fuzzy similarity is only used to
// suggest the closest MVP name for a miss; it never produces a match.
package match

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xrash/smetrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pable/go-fantasy-league/internal/model"
)

// Mode selects how names are normalised before comparison.
type Mode string

const (
	// ModeExact lower-cases and trims.
	ModeExact Mode = "exact"
	// ModeNormalized additionally strips diacritics and punctuation and
	// collapses whitespace.
	ModeNormalized Mode = "normalized"
)

// ParseMode validates a mode name. Empty means ModeExact.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeExact:
		return ModeExact, nil
	case ModeNormalized:
		return ModeNormalized, nil
	default:
		return "", fmt.Errorf("unknown match mode %q (want exact or normalized)", s)
	}
}

// Normalize returns the comparison key for a name.
func Normalize(mode Mode, s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if mode != ModeNormalized {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Matcher looks up player points in one MVP table.
type Matcher struct {
	mode    Mode
	aliases map[string]string // normalised roster name -> normalised MVP name
	points  map[string]model.MVPEntry
	keys    []string // normalised MVP names in file order
}

// New builds a Matcher. Aliases map roster spellings to MVP spellings and are
// applied before lookup. When the table lists a player more than once the
// first row wins.
func New(table model.MVPTable, mode Mode, aliases map[string]string) *Matcher {
	m := &Matcher{
		mode:    mode,
		aliases: make(map[string]string, len(aliases)),
		points:  make(map[string]model.MVPEntry, len(table.Entries)),
	}
	for from, to := range aliases {
		m.aliases[Normalize(mode, from)] = Normalize(mode, to)
	}
	for _, e := range table.Entries {
		k := Normalize(mode, e.Player)
		if k == "" {
			continue
		}
		if _, dup := m.points[k]; dup {
			continue
		}
		m.points[k] = e
		m.keys = append(m.keys, k)
	}
	return m
}

// Key returns the normalised key used for a roster name, after aliases.
func (m *Matcher) Key(name string) string {
	k := Normalize(m.mode, name)
	if alias, ok := m.aliases[k]; ok {
		return alias
	}
	return k
}

// Lookup returns the MVP entry for a drafted player.
func (m *Matcher) Lookup(name string) (model.MVPEntry, bool) {
	e, ok := m.points[m.Key(name)]
	return e, ok
}

// Entries returns the deduplicated MVP entries in file order.
func (m *Matcher) Entries() []model.MVPEntry {
	out := make([]model.MVPEntry, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.points[k]
	}
	return out
}

// Closest returns the MVP player most similar to name and a 0–100 score.
// It returns an empty name when the table is empty.
func (m *Matcher) Closest(name string) (string, int) {
	key := m.Key(name)
	best, bestScore := "", -1.0
	for _, k := range m.keys {
		s := smetrics.JaroWinkler(key, k, 0.7, 4)
		if s > bestScore {
			best, bestScore = k, s
		}
	}
	if best == "" {
		return "", 0
	}
	return m.points[best].Player, int(bestScore*100 + 0.5)
}
