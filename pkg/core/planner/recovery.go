package planner

import (
	"sort"

	"github.com/felixbrandt/saalplan/pkg/core/model"
)

// RecoveringStaffIDs derives who must rest on the following day from the
// previous day's roster: every staff member whose shift code resolves to a
// definition with RequiresRecovery set. The returned IDs are sorted for
// deterministic output.
func RecoveringStaffIDs(previousRoster map[string]model.RosterEntry, shiftDefs map[string]model.ShiftDef) []string {
	ids := make([]string, 0)

	for staffID, entry := range previousRoster {
		code := entry.ShiftCode
		if code == "" {
			code = model.ShiftCodeStandard
		}
		def, ok := shiftDefs[code]
		if !ok {
			continue
		}
		if def.RequiresRecovery {
			ids = append(ids, staffID)
		}
	}

	sort.Strings(ids)
	return ids
}
