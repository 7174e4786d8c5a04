package reconcile

import (
	"fmt"
	"strings"
)

// FormatSummary renders a human-readable report of a sync result.
func FormatSummary(res Result, dryRun bool) string {
	var b strings.Builder
	if dryRun {
		b.WriteString("Dry run: no changes were applied\n")
	}
	fmt.Fprintf(&b, "Created: %d\n", res.Created)
	fmt.Fprintf(&b, "Updated: %d\n", res.Updated)
	fmt.Fprintf(&b, "Deleted: %d\n", res.Deleted)
	if len(res.Errors) > 0 {
		fmt.Fprintf(&b, "Errors: %d\n", len(res.Errors))
	}
	return b.String()
}
