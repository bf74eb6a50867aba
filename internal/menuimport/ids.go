package menuimport

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
)

var idSanitizer = regexp.MustCompile(`\s+`)

// deriveID builds a stable synthetic id for entities the feed shipped
// without one. Hashing parent id + position + name keeps normalization
// reproducible for identical input, so imports can be golden-file
// compared run to run.
func deriveID(prefix, parentID string, index int, name string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%s", parentID, index, name)
	return fmt.Sprintf("%s_%x", prefix, h.Sum64())
}

// flatGroupID names a group synthesized from a flat option list, keeping
// the group name readable in the id like the historical importer did.
func flatGroupID(parentID, groupName string, index int) string {
	slug := idSanitizer.ReplaceAllString(strings.TrimSpace(groupName), "_")
	return fmt.Sprintf("grp_flat_%s_%s", slug, deriveID("g", parentID, index, groupName)[2:])
}
