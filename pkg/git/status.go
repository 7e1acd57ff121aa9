package git

import (
	"strconv"
	"strings"

	"github.com/aretw0/vigil/pkg/core"
)

// Changes queries the working-tree status and classifies every changed path
// as added, modified, or deleted. Untracked files count as added; renames
// count as a deletion of the old path plus an addition of the new one.
// Groups come back sorted so message synthesis is deterministic.
func (c *Client) Changes() (core.ChangeSet, error) {
	out, err := c.Run("status", "--porcelain")
	if err != nil {
		return core.ChangeSet{}, err
	}
	set := parsePorcelain(out)
	set.Sort()
	return set, nil
}

// parsePorcelain maps `git status --porcelain` output to a ChangeSet.
// Each line is "XY path" (or "XY old -> new" for renames); X is the index
// status and Y the worktree status.
func parsePorcelain(out string) core.ChangeSet {
	var set core.ChangeSet

	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		status := line[:2]
		path := unquotePath(strings.TrimSpace(line[3:]))

		switch {
		case status == "??":
			set.Added = append(set.Added, path)
		case strings.ContainsRune(status, 'R'):
			old, renamed, ok := strings.Cut(path, " -> ")
			if ok {
				set.Deleted = append(set.Deleted, unquotePath(old))
				set.Added = append(set.Added, unquotePath(renamed))
			} else {
				set.Modified = append(set.Modified, path)
			}
		case strings.ContainsRune(status, 'D'):
			set.Deleted = append(set.Deleted, path)
		case strings.ContainsRune(status, 'A'):
			set.Added = append(set.Added, path)
		default:
			set.Modified = append(set.Modified, path)
		}
	}

	return set
}

// unquotePath undoes the C-style quoting git applies to unusual paths.
func unquotePath(path string) string {
	if len(path) >= 2 && strings.HasPrefix(path, `"`) && strings.HasSuffix(path, `"`) {
		if unquoted, err := strconv.Unquote(path); err == nil {
			return unquoted
		}
	}
	return path
}
