package rules

import (
	"regexp"
	"strings"

	"github.com/timewarden/timewarden/internal/model"
)

// Kind is the closed set of rule types. Unknown strings parse to
// KindUnknown, which never matches, so schema additions cannot crash an
// older daemon.
type Kind int

const (
	KindUnknown Kind = iota
	KindApp
	KindAppContains
	KindWindowContains
	KindWindowRegex
	KindPathPrefix
	KindPathContains
	KindURLContains
	KindURLRegex
)

var kindNames = map[Kind]string{
	KindApp:            "app",
	KindAppContains:    "app_contains",
	KindWindowContains: "window_contains",
	KindWindowRegex:    "window_regex",
	KindPathPrefix:     "path_prefix",
	KindPathContains:   "path_contains",
	KindURLContains:    "url_contains",
	KindURLRegex:       "url_regex",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a stored rule_type string to its Kind. This is the only
// place the string form is interpreted.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindUnknown
}

// Rule is one enabled matching rule. Group 0 means ungrouped (OR
// semantics); a non-zero group requires every rule sharing it to match.
type Rule struct {
	ID    int64
	Kind  Kind
	Value string
	Group int64

	re *regexp.Regexp
}

// NewRule builds a rule, compiling the pattern for regex kinds. An invalid
// pattern leaves re nil so the rule simply never matches.
func NewRule(id int64, kind Kind, value string, group int64) Rule {
	r := Rule{ID: id, Kind: kind, Value: value, Group: group}
	if kind == KindWindowRegex || kind == KindURLRegex {
		// Case-insensitive like every other rule kind.
		r.re, _ = regexp.Compile("(?i)" + value)
	}
	return r
}

func (r Rule) matches(a model.Activity) bool {
	switch r.Kind {
	case KindApp:
		return equalsFold(a.AppName, r.Value) || equalsFold(a.BundleID, r.Value)
	case KindAppContains:
		return containsFold(a.AppName, r.Value)
	case KindWindowContains:
		return containsFold(a.WindowTitle, r.Value)
	case KindWindowRegex:
		return r.search(a.WindowTitle)
	case KindPathPrefix:
		return prefixFold(a.FilePath, r.Value)
	case KindPathContains:
		return containsFold(a.FilePath, r.Value)
	case KindURLContains:
		return containsFold(a.URL, r.Value)
	case KindURLRegex:
		return r.search(a.URL)
	}
	return false
}

// search runs an unanchored pattern search, never a full match.
func (r Rule) search(field *string) bool {
	if field == nil || r.re == nil {
		return false
	}
	return r.re.MatchString(*field)
}

func equalsFold(field *string, value string) bool {
	return field != nil && strings.EqualFold(*field, value)
}

func containsFold(field *string, value string) bool {
	return field != nil && strings.Contains(strings.ToLower(*field), strings.ToLower(value))
}

func prefixFold(field *string, value string) bool {
	return field != nil && strings.HasPrefix(strings.ToLower(*field), strings.ToLower(value))
}
