package speech

import "strings"

// Tokens the genie writes for stage effect that read terribly out loud.
var (
	onomatopoeia = []string{"POOOOF!", "POOOOF"}
	emojiTokens  = []string{"✨", "🧞‍♂️", "🧞", "🔮", "💨"}
)

// CleanUtterance strips markdown emphasis markers, onomatopoeic stage sounds
// and the genie's emoji set so the voice reads fluently. An empty result means
// there is nothing worth speaking.
func CleanUtterance(text string) string {
	cleaned := strings.ReplaceAll(text, "*", "")
	for _, token := range onomatopoeia {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}
	for _, token := range emojiTokens {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}
	return strings.TrimSpace(cleaned)
}
