// Package preprocess implements the textual macro layer applied before
// scanning: #define registers a naive substring substitution and #include
// splices in another file, recursively preprocessed. The output is plain
// source text; it is the only thing the scanner ever sees.
package preprocess

import (
	"os"
	"path/filepath"
	"strings"
)

// Expand preprocesses source text. basePath is the path of the file the
// text came from, used to resolve #include directives relative to its
// directory; it may be empty for REPL input, in which case includes resolve
// against the working directory.
//
// #define NAME VALUE applies to all lines after the directive, by plain
// substring replacement (not token-aware). #include "path" splices the
// recursively preprocessed file contents; unreadable includes are skipped.
func Expand(source string, basePath string) string {
	macros := make(map[string]string)
	var order []string // substitution in definition order
	var out strings.Builder

	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)

		if rest, ok := strings.CutPrefix(trimmed, "#define "); ok {
			name, value, found := strings.Cut(rest, " ")
			if found {
				if _, seen := macros[name]; !seen {
					order = append(order, name)
				}
				macros[name] = value
			}
			continue
		}

		if rest, ok := strings.CutPrefix(trimmed, "#include "); ok {
			path := strings.TrimSpace(rest)
			path = strings.TrimPrefix(path, "\"")
			path = strings.TrimSuffix(path, "\"")
			include := path
			if basePath != "" {
				include = filepath.Join(filepath.Dir(basePath), path)
			}
			if contents, err := os.ReadFile(include); err == nil {
				out.WriteString(Expand(string(contents), include))
				out.WriteString("\n")
			}
			continue
		}

		processed := line
		for _, name := range order {
			processed = strings.ReplaceAll(processed, name, macros[name])
		}
		out.WriteString(processed)
		out.WriteString("\n")
	}

	return out.String()
}

// ExpandFile reads and preprocesses a source file.
func ExpandFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Expand(string(data), path), nil
}
