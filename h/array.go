package h

import "github.com/thoas/go-funk"

func ContainsString(array []string, value string) bool {
	if len(array) == 0 || value == "" {
		return false
	}
	return funk.ContainsString(array, value)
}

// UniqueStrings keeps the first occurrence of each value, dropping empties.
func UniqueStrings(values []string) []string {
	out := []string{}
	for _, value := range funk.UniqString(values) {
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}
