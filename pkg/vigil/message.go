package vigil

import (
	"fmt"
	"strings"

	"github.com/aretw0/vigil/pkg/core"
)

// FormatMessage renders a deterministic commit message for a change set.
// The summary line counts each non-empty group, followed by the grouped
// paths. Identical change sets always produce byte-identical messages, so
// the groups are sorted before rendering.
//
//	Deleted 1, Added 2
//
//	Deleted:
//	  old.txt
//
//	Added:
//	  a.txt
//	  b.txt
func FormatMessage(set core.ChangeSet) string {
	set.Sort()

	type group struct {
		label string
		paths []string
	}
	groups := []group{
		{"Deleted", set.Deleted},
		{"Modified", set.Modified},
		{"Added", set.Added},
	}

	var summary []string
	for _, g := range groups {
		if len(g.paths) > 0 {
			summary = append(summary, fmt.Sprintf("%s %d", g.label, len(g.paths)))
		}
	}

	var b strings.Builder
	b.WriteString(strings.Join(summary, ", "))

	for _, g := range groups {
		if len(g.paths) == 0 {
			continue
		}
		b.WriteString("\n\n")
		b.WriteString(g.label)
		b.WriteString(":")
		for _, p := range g.paths {
			b.WriteString("\n  ")
			b.WriteString(p)
		}
	}

	return b.String()
}
