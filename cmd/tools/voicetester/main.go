package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/lampadamagica/genio/backend/internal/config"
	speechmodel "github.com/lampadamagica/genio/backend/internal/model/speech"
	"github.com/lampadamagica/genio/backend/internal/service/speech"
)

// Smoke tool for the TTS chain: cleans the text, shows the selected voice
// profile and writes the synthesized audio to disk.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] no .env loaded, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	text := flag.String("text", "", "text to synthesize")
	voice := flag.String("voice", "", "voice id override (default: profile selection)")
	outputPath := flag.String("out", "", "output audio path (default genie.<format>)")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")
	dryRun := flag.Bool("dry-run", false, "only show cleaning and voice selection, skip synthesis")
	flag.Parse()

	if *text == "" {
		flag.Usage()
		log.Fatal("provide the utterance with -text")
	}

	cleaned := speech.CleanUtterance(*text)
	fmt.Printf("cleaned utterance: %q\n", cleaned)
	if cleaned == "" {
		log.Fatal("nothing left to speak after cleaning")
	}

	svc := speech.NewService(cfg.Speech)
	if profile, ok := svc.Profile(); ok {
		fmt.Printf("voice: %s (%s) pitch=%.2f rate=%.2f\n",
			profile.Voice.ID, profile.Voice.Name, profile.Pitch, profile.Rate)
	} else {
		log.Fatalf("no voice available for language %s", cfg.Speech.Language)
	}

	if *dryRun {
		return
	}

	if !cfg.Speech.Enabled {
		log.Fatal("speech backend not configured: set SPEECH_APP_ID and SPEECH_ACCESS_TOKEN")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	response, err := svc.Synthesize(ctx, &speechmodel.TTSRequest{Text: cleaned, Voice: *voice})
	if err != nil {
		log.Fatalf("synthesis failed: %v", err)
	}

	path := *outputPath
	if path == "" {
		path = "genie." + response.Format
	}

	if err := os.WriteFile(path, response.AudioData, 0o644); err != nil {
		log.Fatalf("failed to write audio: %v", err)
	}

	fmt.Printf("wrote %d bytes to %s (duration %dms)\n", len(response.AudioData), path, response.Duration)
}
