package session

import (
	"fmt"
	"regexp"
	"strconv"
)

var experimentNamePattern = regexp.MustCompile(`(?i)Experiment\s+(\d+)`)

// ExperimentName renders the canonical name for experiment n.
func ExperimentName(n int) string {
	return fmt.Sprintf("Experiment %d", n)
}

// ExperimentNumber extracts the number from an "Experiment N" name.
func ExperimentNumber(name string) (int, bool) {
	match := experimentNamePattern.FindStringSubmatch(name)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
