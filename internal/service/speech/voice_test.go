package speech

import "testing"

func TestProfileForPrefersExplicitMaleVoice(t *testing.T) {
	profile, ok := ProfileFor(DefaultCatalog(), "it-IT")
	if !ok {
		t.Fatal("expected a voice for it-IT")
	}
	if profile.Voice.Name != "Cosimo" {
		t.Fatalf("expected the first male voice, got %s", profile.Voice.Name)
	}
	if profile.Pitch != naturalPitch {
		t.Fatalf("male voice keeps natural pitch, got %.2f", profile.Pitch)
	}
	if profile.Rate != livelyRate {
		t.Fatalf("unexpected rate %.2f", profile.Rate)
	}
}

func TestProfileForFallsBackToGoogleVoice(t *testing.T) {
	voices := []Voice{
		{ID: "it_female_elsa", Name: "Elsa", Lang: "it-IT"},
		{ID: "it_google_italiano", Name: "Google italiano", Lang: "it-IT"},
	}

	profile, ok := ProfileFor(voices, "it-IT")
	if !ok {
		t.Fatal("expected a voice")
	}
	if profile.Voice.Name != "Google italiano" {
		t.Fatalf("expected the Google voice, got %s", profile.Voice.Name)
	}
	if profile.Pitch != warmPitch {
		t.Fatalf("generic voice gets lowered pitch, got %.2f", profile.Pitch)
	}
}

func TestProfileForFallsBackToFirstLanguageMatch(t *testing.T) {
	voices := []Voice{
		{ID: "en_male_george", Name: "George (male)", Lang: "en-US"},
		{ID: "it_female_elsa", Name: "Elsa", Lang: "it-IT"},
	}

	profile, ok := ProfileFor(voices, "it-IT")
	if !ok {
		t.Fatal("expected a voice")
	}
	if profile.Voice.Name != "Elsa" {
		t.Fatalf("expected the only Italian voice, got %s", profile.Voice.Name)
	}
	if profile.Pitch != warmPitch {
		t.Fatalf("generic voice gets lowered pitch, got %.2f", profile.Pitch)
	}
}

func TestProfileForNoMatch(t *testing.T) {
	voices := []Voice{{ID: "en_male_george", Name: "George (male)", Lang: "en-US"}}

	if _, ok := ProfileFor(voices, "it-IT"); ok {
		t.Fatal("expected no voice for an unknown language")
	}
}

func TestIsExplicitlyMaleExcludesFemale(t *testing.T) {
	if isExplicitlyMale(Voice{Name: "Emma (female)"}) {
		t.Fatal("female-labeled voice must not count as male")
	}
	if !isExplicitlyMale(Voice{Name: "George (male)"}) {
		t.Fatal("male-labeled voice must count as male")
	}
}
