package gesture

// MatchKind selects how a rule compares against the pressed set
type MatchKind int

const (
	// Exact rules must equal the whole pressed set.
	Exact MatchKind = iota
	// Suffix rules compare the two earliest keys (the tail of the set). The
	// keys pressed after them are parameters handed back as the prefix.
	Suffix
)

// Rule is one chord in the priority table
type Rule struct {
	Name string
	Keys []Key
	Kind MatchKind
}

// Match is the winning rule plus the keys that preceded its suffix.
type Match struct {
	Rule   Rule
	Prefix []Key
}

// Table is an ordered list of rules; the first match wins.
type Table []Rule

// Match walks the table in order. active filters rules that do not apply in
// the current mode; nil means every rule is active.
func (t Table) Match(pressed []Key, active func(Rule) bool) (Match, bool) {
	if len(pressed) < 2 {
		return Match{}, false
	}
	for _, r := range t {
		if active != nil && !active(r) {
			continue
		}
		switch r.Kind {
		case Exact:
			if equal(pressed, r.Keys) {
				return Match{Rule: r}, true
			}
		case Suffix:
			n := len(r.Keys)
			if n == 0 || len(pressed) < n {
				continue
			}
			split := len(pressed) - n
			if equal(pressed[split:], r.Keys) {
				return Match{Rule: r, Prefix: pressed[:split]}, true
			}
		}
	}
	return Match{}, false
}

// Param is the most recent prefix key, the one that selects the parameter.
func (m Match) Param() (Key, bool) {
	if len(m.Prefix) == 0 {
		return Key{}, false
	}
	return m.Prefix[0], true
}
