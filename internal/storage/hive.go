package storage

import "strings"

// HiveParts parses the key=value path segments of a dataset key:
// "a=1/b=2/data.csv" yields {"a": "1", "b": "2"}. Segments without a '='
// (roots and file names) are skipped.
func HiveParts(key string) map[string]string {
	parts := map[string]string{}
	for _, segment := range strings.Split(key, "/") {
		if i := strings.IndexByte(segment, '='); i > 0 {
			parts[segment[:i]] = segment[i+1:]
		}
	}
	return parts
}
