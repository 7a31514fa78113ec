package shell

import (
	_ "embed"
	"strings"
)

//go:embed helptext/usage.txt
var usageText string

func usage(topics []string) string {
	if len(topics) == 0 {
		return usageText
	}
	var lines []string
	for _, l := range strings.Split(usageText, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), topics[0]) {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return "There is no help text for the topic " + topics[0]
	}
	return strings.Join(lines, "\n")
}
