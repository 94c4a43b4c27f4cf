package utils

import "slices"

// FilterSliceString returns slice without any of the filtered values.
func FilterSliceString(slice []string, filter ...string) []string {
	var out = make([]string, 0, len(slice))
	for _, v := range slice {
		if slices.Contains(filter, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
