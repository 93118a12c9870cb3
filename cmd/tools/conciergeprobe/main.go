// conciergeprobe is a manual smoke tester for the Gemini-backed services:
// one-shot generation, transcription of a capture file, and speech
// synthesis, all using the same configuration as the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/GaryBary/noosa26/internal/config"
	"github.com/GaryBary/noosa26/internal/service/ai"
	"github.com/GaryBary/noosa26/internal/service/speech"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] no .env file, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if !cfg.Gemini.Enabled() {
		log.Fatal("GEMINI_API_KEY not configured")
	}

	mode := flag.String("mode", "chat", "probe mode: chat, asr or tts")
	message := flag.String("message", "Hastings St dining", "chat utterance")
	localityFocus := flag.String("locality", "", "locality focus for chat mode")
	audioPath := flag.String("audio", "", "asr input audio file path")
	text := flag.String("text", "", "tts input text")
	outputPath := flag.String("out", "probe-output.pcm", "tts output file path")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")

	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "chat":
		runChat(ctx, cfg, *message, *localityFocus)
	case "asr":
		runASR(ctx, cfg, *audioPath)
	case "tts":
		runTTS(ctx, cfg, *text, *outputPath)
	default:
		flag.Usage()
		log.Fatal("specify -mode=chat, -mode=asr or -mode=tts")
	}
}

func runChat(ctx context.Context, cfg *config.Config, message, localityFocus string) {
	gateway := ai.NewService(cfg.Gemini)

	reply, err := gateway.Generate(ctx, nil, message, nil, localityFocus)
	if err != nil {
		log.Fatalf("generation failed: %v", err)
	}

	fmt.Println(reply.Text)
	if reply.Grounding != nil {
		fmt.Printf("\n%d grounding chunk(s):\n", len(reply.Grounding.GroundingChunks))
		for _, chunk := range reply.Grounding.GroundingChunks {
			fmt.Printf("  - %s (%s)\n", chunk.Title(), chunk.URI())
		}
	}
}

func runASR(ctx context.Context, cfg *config.Config, audioPath string) {
	if audioPath == "" {
		log.Fatal("-audio is required in asr mode")
	}
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		log.Fatalf("failed to read audio file: %v", err)
	}

	transcript := speech.NewService(cfg.Gemini).Transcribe(ctx, audio, "audio/webm")
	if transcript == "" {
		log.Fatal("transcription returned nothing")
	}
	fmt.Println(transcript)
}

func runTTS(ctx context.Context, cfg *config.Config, text, outputPath string) {
	if text == "" {
		log.Fatal("-text is required in tts mode")
	}

	audio := speech.NewService(cfg.Gemini).Synthesize(ctx, text)
	if len(audio) == 0 {
		log.Fatal("synthesis returned nothing")
	}

	if err := os.WriteFile(outputPath, audio, 0o644); err != nil {
		log.Fatalf("failed to write output: %v", err)
	}
	log.Printf("wrote %d bytes of %dHz pcm to %s", len(audio), speech.SampleRate, outputPath)
}
