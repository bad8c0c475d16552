// Package mention extracts identity mentions from message text.
package mention

import "regexp"

// A mention token is an angle-bracketed, at-prefixed 26-character identifier
// in the Crockford base32 alphabet (no I, L, O or U), e.g.
// <@01ARZ3NDEKTSV4RRFFQ69G5FAV>.
var pattern = regexp.MustCompile(`<@([0123456789ABCDEFGHJKMNPQRSTVWXYZ]{26})>`)

// Extract returns the ids of every identity mentioned in content,
// deduplicated, in first-occurrence order. Returns nil when there are none.
// It does not verify that the mentioned identities exist or can see the
// channel; membership is checked before any notification fan-out.
func Extract(content string) []string {
	matches := pattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	mentions := make([]string, 0, len(matches))
	for _, m := range matches {
		id := m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		mentions = append(mentions, id)
	}
	return mentions
}
