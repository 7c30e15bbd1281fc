package net

import (
	"bufio"
	"strings"
)

// ParseInfo parses the reply of the INFO command into a flat map.
// Section headers, starting with '#', and empty lines are skipped.
// Values keep their raw text, e.g. "db0" maps to "keys=1,expires=0".
func ParseInfo(info string) map[string]string {
	m := make(map[string]string)
	s := bufio.NewScanner(strings.NewReader(info))
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}
