package ucsname

import "strings"

// DefaultLibraryTemplate matches the original implementation's default.
const DefaultLibraryTemplate = "{source_id} {library_name}"

// RenderLibraryTemplate substitutes "{source_id}" and "{library_name}"
// placeholders in template, collapsing surrounding whitespace left by an
// empty substitution.
func RenderLibraryTemplate(template, sourceID, libraryName string) string {
	if template == "" {
		template = DefaultLibraryTemplate
	}
	out := strings.ReplaceAll(template, "{source_id}", sourceID)
	out = strings.ReplaceAll(out, "{library_name}", libraryName)
	return strings.Join(strings.Fields(out), " ")
}
