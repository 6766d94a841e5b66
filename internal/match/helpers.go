package match

import "strings"

var apostropheReplacer = strings.NewReplacer("’", "'", "‘", "'")

func normalizeApostrophes(s string) string {
	return apostropheReplacer.Replace(strings.ToLower(s))
}
