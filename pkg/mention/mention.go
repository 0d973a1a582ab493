package mention

import "regexp"

var pattern = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

// Extract returns the usernames mentioned in text, in first-seen order and
// without duplicates. Matching is case-sensitive.
func Extract(text string) []string {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}
