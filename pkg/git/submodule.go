package git

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Submodules lists the paths of nested repositories registered in the
// repository, sorted for deterministic settle order.
func (c *Client) Submodules() ([]string, error) {
	// Cheap short-circuit: no .gitmodules means no registered submodules.
	if _, err := os.Stat(filepath.Join(c.WorkDir, ".gitmodules")); os.IsNotExist(err) {
		return nil, nil
	}

	out, err := c.Run("submodule", "status")
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, line := range strings.Split(out, "\n") {
		// Lines look like " <sha> <path> (<describe>)" with a one-character
		// state prefix (space, +, - or U).
		if len(line) < 2 {
			continue
		}
		fields := strings.Fields(line[1:])
		if len(fields) < 2 {
			continue
		}
		paths = append(paths, fields[1])
	}

	sort.Strings(paths)
	return paths, nil
}
