// Command ai-smoketest exercises the Gemini relay against the live upstream.
// It needs GEMINI_API_KEY set and makes billable calls; run it by hand only.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/ideaforge-io/ideaforge/src/ai"
)

var (
	modeFlag    = flag.String("mode", "both", "chat|impact|both")
	promptFlag  = flag.String("prompt", "Give one sentence of advice for a first-time founder.", "User prompt for chat mode")
	ideaFlag    = flag.String("idea", "A mobile clinic that brings preventive care to rural towns.", "Idea text for impact mode")
	timeoutFlag = flag.Duration("timeout", 45*time.Second, "Per-call timeout")
)

func main() {
	log.SetFlags(0)
	flag.Parse()

	relay := ai.NewClient(os.Getenv("GEMINI_API_KEY"))

	if *modeFlag == "chat" || *modeFlag == "both" {
		run("chat", func(ctx context.Context) (string, error) {
			return relay.Chat(ctx, []ai.Message{
				{Role: "system", Content: "You are a concise startup advisor."},
				{Role: "user", Content: *promptFlag},
			})
		})
	}
	if *modeFlag == "impact" || *modeFlag == "both" {
		run("impact", func(ctx context.Context) (string, error) {
			return relay.ImpactScore(ctx, *ideaFlag)
		})
	}
}

func run(name string, fn func(context.Context) (string, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	start := time.Now()
	out, err := fn(ctx)
	if err != nil {
		log.Printf("[%s] ERROR (kind %d): %v", name, ai.KindOf(err), err)
		return
	}
	log.Printf("[%s] %s (%.1fs)", name, out, time.Since(start).Seconds())
}
