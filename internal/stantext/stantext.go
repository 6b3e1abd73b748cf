// Package stantext provides lexical scanning of Stan model source text.
// It supports the dtype-inference pass of the converter: stripping comments
// and string literals, locating the generated quantities block, and listing
// the names declared there with an integer type.
package stantext

import (
	"regexp"
	"strings"
)

// Stan accepts C-style comments plus a deprecated "#" line comment.
// String literals are removed together with comments so that an "int"
// inside a print("...") never produces a false declaration match.
var commentsAndStrings = regexp.MustCompile(
	`(?ms)//.*?$|/\*.*?\*/|'(?:\\.|[^\\'])*'|"(?:\\.|[^\\"])*"`,
)

// An integer declaration is the keyword "int", zero or more <...> constraint
// groups, then an identifier terminated by ";", "=", "[" or whitespace.
var intDeclaration = regexp.MustCompile(
	`(?i)int\s*(?:<[^>]+>)*\s*([^;=\s\[]+)`,
)

// GeneratedQuantitiesMarker is the literal block header that separates
// model-internal declarations from sampler output declarations.
const GeneratedQuantitiesMarker = "generated quantities"

// StripComments removes deprecated "#" trailing comments, C-style line and
// block comments, and quoted string literals from Stan source text.
func StripComments(code string) string {
	// Deprecated "#" comments are line-scoped and must be cut before the
	// C-style pass, which does not know about them.
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "#"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	code = strings.Join(lines, "\n")

	return commentsAndStrings.ReplaceAllString(code, "")
}

// GeneratedQuantities returns the source text after the last occurrence of
// the generated quantities marker. Declarations before the marker are not
// guaranteed to reflect the sampled output representation, so callers scan
// only this tail. If the marker is absent the whole text is returned.
func GeneratedQuantities(code string) string {
	idx := strings.LastIndex(code, GeneratedQuantitiesMarker)
	if idx < 0 {
		return code
	}
	return code[idx+len(GeneratedQuantitiesMarker):]
}

// IntDeclarations scans source text for integer-typed declarations and
// returns the declared names in order of appearance. The input is expected
// to be comment-stripped; commented-out declarations in raw text would
// otherwise match.
func IntDeclarations(code string) []string {
	matches := intDeclaration.FindAllStringSubmatch(code, -1)
	if len(matches) == 0 {
		return nil
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(m[1])
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
