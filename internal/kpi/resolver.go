package kpi

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultFuzzyThreshold is the minimum normalized similarity accepted by
// the last-resort fuzzy match of the resolver.
const DefaultFuzzyThreshold = 0.7

// asciiFold strips combining marks so that "Sessão" and "Sessao" share a key.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize reduces a raw column name to its lookup key: diacritics
// folded, lower-cased, every run of whitespace, underscores, hyphens,
// slashes and other punctuation collapsed to a single space, trimmed.
func Normalize(name string) string {
	folded, _, err := transform.String(asciiFold, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// BaseKey strips one trailing auxiliary token ("info", "min", ...) from
// a normalized key, leaving the bare metric or identifier name.
func BaseKey(key string) string {
	idx := strings.LastIndexByte(key, ' ')
	if idx < 0 {
		return key
	}
	if auxiliarySuffixes[key[idx+1:]] {
		return key[:idx]
	}
	return key
}

// Resolver maps raw column names to canonical roles. It is stateless
// apart from the fuzzy threshold and safe for concurrent use.
type Resolver struct {
	threshold float64
}

// NewResolver creates a resolver with the given fuzzy similarity
// threshold; non-positive values fall back to DefaultFuzzyThreshold.
func NewResolver(threshold float64) *Resolver {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultFuzzyThreshold
	}
	return &Resolver{threshold: threshold}
}

// Resolve maps the given column set to roles and reports which of the
// required roles could not be resolved. The result is a pure function
// of the column list and the static alias vocabulary: no randomness,
// no dependence on column position beyond first-wins tie-breaking.
//
// Matching per role walks the tiers of the cascade in order (exact full
// key, exact base key, prefix, substring, fuzzy) and within each tier
// tries the role's candidates in alias order, so an exact alias match
// always beats a fuzzy match of an earlier candidate. Two roles may end
// up on the same raw column; that is tolerated here and handled
// defensively downstream.
func (rs *Resolver) Resolve(columns []string, required []Role) (RoleMapping, []Role) {
	idx := newColumnIndex(columns)

	mapping := make(RoleMapping, len(Roles))
	for _, role := range Roles {
		if col, ok := rs.resolveRole(idx, role); ok {
			mapping[role] = col
		}
	}

	var missing []Role
	for _, role := range required {
		if !mapping.Has(role) {
			missing = append(missing, role)
		}
	}
	return mapping, missing
}

// Resolve runs the cascade with the default fuzzy threshold.
func Resolve(columns []string, required []Role) (RoleMapping, []Role) {
	return NewResolver(DefaultFuzzyThreshold).Resolve(columns, required)
}

func (rs *Resolver) resolveRole(idx *columnIndex, role Role) (string, bool) {
	cands := candidates(role)

	for _, cand := range cands {
		if col, ok := idx.full[cand]; ok {
			return col, true
		}
	}
	for _, cand := range cands {
		if col, ok := idx.base[cand]; ok {
			return col, true
		}
	}
	for _, cand := range cands {
		if col, ok := idx.prefix(cand); ok {
			return col, true
		}
	}
	for _, cand := range cands {
		if col, ok := idx.substring(cand); ok {
			return col, true
		}
	}
	for _, cand := range cands {
		if col, ok := idx.fuzzy(cand, rs.threshold); ok {
			return col, true
		}
	}
	return "", false
}

// columnIndex holds the normalized lookup tables for one column set.
// Keys map to the first raw column that produced them, preserving the
// table's column order for every scan.
type columnIndex struct {
	full     map[string]string
	base     map[string]string
	fullKeys []string
	baseKeys []string
}

func newColumnIndex(columns []string) *columnIndex {
	idx := &columnIndex{
		full: make(map[string]string, len(columns)),
		base: make(map[string]string, len(columns)),
	}
	for _, col := range columns {
		key := Normalize(col)
		if key == "" {
			continue
		}
		if _, ok := idx.full[key]; !ok {
			idx.full[key] = col
			idx.fullKeys = append(idx.fullKeys, key)
		}
		bkey := BaseKey(key)
		if _, ok := idx.base[bkey]; !ok {
			idx.base[bkey] = col
			idx.baseKeys = append(idx.baseKeys, bkey)
		}
	}
	return idx
}

// prefix finds the first key the candidate is a word-boundary prefix of.
func (idx *columnIndex) prefix(cand string) (string, bool) {
	want := cand + " "
	for _, key := range idx.fullKeys {
		if strings.HasPrefix(key, want) {
			return idx.full[key], true
		}
	}
	for _, key := range idx.baseKeys {
		if strings.HasPrefix(key, want) {
			return idx.base[key], true
		}
	}
	return "", false
}

// substring finds the first key containing the candidate as whole words.
func (idx *columnIndex) substring(cand string) (string, bool) {
	want := " " + cand + " "
	for _, key := range idx.fullKeys {
		if strings.Contains(" "+key+" ", want) {
			return idx.full[key], true
		}
	}
	for _, key := range idx.baseKeys {
		if strings.Contains(" "+key+" ", want) {
			return idx.base[key], true
		}
	}
	return "", false
}

// fuzzy picks the best key whose normalized Levenshtein similarity to
// the candidate reaches the threshold; earlier columns win ties.
func (idx *columnIndex) fuzzy(cand string, threshold float64) (string, bool) {
	bestCol := ""
	bestSim := 0.0
	scan := func(keys []string, lookup map[string]string) {
		for _, key := range keys {
			sim := similarity(cand, key)
			if sim >= threshold && sim > bestSim {
				bestSim = sim
				bestCol = lookup[key]
			}
		}
	}
	scan(idx.fullKeys, idx.full)
	scan(idx.baseKeys, idx.base)
	if bestCol == "" {
		return "", false
	}
	return bestCol, true
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// DisplayName strips a trailing auxiliary suffix ("... - Info") from a
// raw column name for legend and selector display.
func DisplayName(column string) string {
	trimmed := strings.TrimSpace(column)
	for _, sep := range []string{" - ", " – ", "-"} {
		idx := strings.LastIndex(trimmed, sep)
		if idx <= 0 {
			continue
		}
		tail := Normalize(trimmed[idx+len(sep):])
		if auxiliarySuffixes[tail] {
			return strings.TrimSpace(trimmed[:idx])
		}
	}
	return trimmed
}
