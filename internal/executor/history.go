package executor

import "strings"

// historyKeys are the key=value markers forge prints for the training history
// file of a run.
var historyKeys = map[string]struct{}{
	"history_path":          {},
	"training_history_path": {},
	"metrics_history_path":  {},
}

const historySuffix = "history.json"

// ScanHistoryPath returns the last history path announced in stdout, either
// as a marker line (history_path=...) or as a line ending in history.json.
// Marker values of "-" mean "none" and are skipped.
func ScanHistoryPath(stdout string) (string, bool) {
	var found string
	var ok bool
	for _, raw := range strings.Split(stdout, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if key, value, isPair := strings.Cut(line, "="); isPair {
			if _, known := historyKeys[strings.TrimSpace(key)]; known {
				value = strings.TrimSpace(value)
				if value != "" && value != "-" {
					found, ok = value, true
				}
				continue
			}
		}
		if strings.HasSuffix(line, historySuffix) {
			found, ok = line, true
		}
	}
	return found, ok
}
