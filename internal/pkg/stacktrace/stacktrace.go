package stacktrace

import "strings"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" frames of a raw
// debug.Stack dump, outermost last.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)

	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)

		file, _, _ := strings.Cut(line, " ")
		if !strings.Contains(file, ".go:") {
			continue
		}

		idx := strings.Index(file, "/internal/")
		if idx == -1 {
			continue
		}
		paths = append(paths, file[idx+1:])
	}

	return paths
}
