package label

import "strings"

// Separator joins the segments of a nested label name.
const Separator = "/"

// Record pairs a label name with the id Gmail assigned to it. The name is
// the authoritative key on the sheet side; the id is authoritative on the
// Gmail side.
type Record struct {
	Name string
	ID   string
}

// Path is a label name parsed into its ordered segments. Parsing once up
// front avoids re-splitting the name at every ancestor check.
type Path struct {
	segments []string
}

// ParsePath splits a label name on "/" into a Path. Empty segments are
// dropped, so "A//B" and "A/B" parse the same.
func ParsePath(name string) Path {
	raw := strings.Split(name, Separator)
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return Path{segments: segments}
}

// String re-joins the path into the wire representation Gmail uses.
func (p Path) String() string {
	return strings.Join(p.segments, Separator)
}

// IsNested reports whether the path has at least one ancestor.
func (p Path) IsNested() bool {
	return len(p.segments) > 1
}

// Ancestors returns every proper prefix of the path, shallowest first.
// For "A/B/C" that is ["A", "A/B"]. Creation must follow this order so a
// child is never created before its parent.
func (p Path) Ancestors() []string {
	if len(p.segments) < 2 {
		return nil
	}
	out := make([]string, 0, len(p.segments)-1)
	for i := 1; i < len(p.segments); i++ {
		out = append(out, strings.Join(p.segments[:i], Separator))
	}
	return out
}

// system label ids Gmail reserves; never surfaced to or mutated by sync
var systemLabels = map[string]bool{
	"INBOX":     true,
	"SENT":      true,
	"DRAFT":     true,
	"TRASH":     true,
	"SPAM":      true,
	"CHAT":      true,
	"UNREAD":    true,
	"STARRED":   true,
	"IMPORTANT": true,
}

// IsSystem reports whether the given label id or name belongs to Gmail
// itself. Category labels are matched by prefix.
func IsSystem(idOrName string) bool {
	if systemLabels[idOrName] {
		return true
	}
	return strings.HasPrefix(idOrName, "CATEGORY_")
}
