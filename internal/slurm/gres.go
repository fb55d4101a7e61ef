package slurm

import "strings"

// NoLimit is written for a resource whose limit is cleared. The tools read
// it as "no limit", which differs from leaving the key unset.
const NoLimit = "-1"

// GresValue returns the value stored under key in a comma separated
// "key=value" resource list such as "cpu=4,mem=16G,gres/gpu=1".
func GresValue(haystack, key string) (string, bool) {
	if haystack == "" {
		return "", false
	}
	for _, pair := range strings.Split(haystack, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if k == key {
			return v, true
		}
	}
	return "", false
}

// UpdateGresValue rewrites the value of key in haystack, keeping the order of
// all other entries, or appends "key=value" when key is missing. An empty
// value is stored as NoLimit. Entries without "=" are dropped.
func UpdateGresValue(haystack, key, value string) string {
	if value == "" {
		value = NoLimit
	}

	var parts []string
	found := false
	if haystack != "" {
		for _, pair := range strings.Split(haystack, ",") {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				continue
			}
			if k == key {
				v = value
				found = true
			}
			parts = append(parts, k+"="+v)
		}
	}
	if !found {
		parts = append(parts, key+"="+value)
	}
	return strings.Join(parts, ",")
}
