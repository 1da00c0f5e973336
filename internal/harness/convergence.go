package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/hexwar/internal/game"
)

// Converge compares two games built from the same roster: the turn counter
// and every observable field of every unit. It returns one message per
// difference, in unit order then field name order.
func Converge(local, remote *game.Game) []string {
	var diffs []string
	if local.Turn() != remote.Turn() {
		diffs = append(diffs, fmt.Sprintf("turn diverged: local %d, remote %d", local.Turn(), remote.Turn()))
	}

	for _, lu := range local.Units() {
		ru, ok := remote.Unit(lu.Name())
		if !ok {
			diffs = append(diffs, fmt.Sprintf("unit %s missing on remote", lu.Name()))
			continue
		}
		lf, rf := UnitFields(lu), UnitFields(ru)
		keys := make([]string, 0, len(lf))
		for k := range lf {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if lf[k] != rf[k] {
				diffs = append(diffs, fmt.Sprintf("unit %s diverged on %s: local %v, remote %v", lu.Name(), k, lf[k], rf[k]))
			}
		}
	}
	return diffs
}
