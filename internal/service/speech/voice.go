package speech

import "strings"

// Voice describes one synthesis voice offered by the backend.
type Voice struct {
	ID   string
	Name string
	Lang string
}

// Profile is a voice with the delivery parameters tuned for the genie.
type Profile struct {
	Voice Voice
	Pitch float32
	Rate  float32
}

// Known male-labeled voice names across platforms. An explicitly male voice
// keeps its natural pitch; everything else gets lowered for warmth.
var maleVoiceNames = []string{"Cosimo", "Luca", "Adriano"}

const (
	naturalPitch = 1.0
	warmPitch    = 0.9
	livelyRate   = 1.05
)

// DefaultCatalog lists the voices the synthesis backend is known to offer.
func DefaultCatalog() []Voice {
	return []Voice{
		{ID: "it_male_cosimo", Name: "Cosimo", Lang: "it-IT"},
		{ID: "it_male_luca", Name: "Luca", Lang: "it-IT"},
		{ID: "it_male_adriano", Name: "Adriano", Lang: "it-IT"},
		{ID: "it_google_italiano", Name: "Google italiano", Lang: "it-IT"},
		{ID: "it_female_elsa", Name: "Elsa", Lang: "it-IT"},
		{ID: "en_male_george", Name: "George (male)", Lang: "en-US"},
	}
}

// ProfileFor picks the genie's voice for the given language: explicitly
// male-labeled voices first, then the known high-quality generic voice, then
// whatever speaks the language at all. ok is false when no voice matches.
func ProfileFor(voices []Voice, lang string) (Profile, bool) {
	candidates := make([]Voice, 0, len(voices))
	for _, v := range voices {
		if strings.Contains(strings.ToLower(v.Lang), strings.ToLower(langPrefix(lang))) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return Profile{}, false
	}

	for _, v := range candidates {
		if isExplicitlyMale(v) {
			return Profile{Voice: v, Pitch: naturalPitch, Rate: livelyRate}, true
		}
	}

	for _, v := range candidates {
		if strings.Contains(v.Name, "Google") {
			return Profile{Voice: v, Pitch: warmPitch, Rate: livelyRate}, true
		}
	}

	return Profile{Voice: candidates[0], Pitch: warmPitch, Rate: livelyRate}, true
}

func isExplicitlyMale(v Voice) bool {
	for _, name := range maleVoiceNames {
		if strings.Contains(v.Name, name) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(v.Name), "male") &&
		!strings.Contains(strings.ToLower(v.Name), "female")
}

// langPrefix reduces "it-IT" to "it" so regional variants still match.
func langPrefix(lang string) string {
	if idx := strings.IndexByte(lang, '-'); idx > 0 {
		return lang[:idx]
	}
	return lang
}
