// Command chat is an interactive terminal client for the attraction
// retrieval pipeline. It runs the same embed, search, and generate path
// as the API, printing sources alongside each answer.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/RoamlyAI/roamly-mvp/engine/domain"
	"github.com/RoamlyAI/roamly-mvp/engine/rag"
	"github.com/RoamlyAI/roamly-mvp/engine/semantic"
	"github.com/RoamlyAI/roamly-mvp/pkg/hfembed"
	"github.com/RoamlyAI/roamly-mvp/pkg/llm"
)

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func main() {
	topN := flag.Int("top", domain.DefaultTopN, "number of context attractions per question")
	quiet := flag.Bool("quiet", false, "suppress pipeline logs")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *quiet {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	qdrantAddr := envOr("QDRANT_URL", "localhost:6334")
	collection := envOr("QDRANT_COLLECTION", "attractions")

	store, err := semantic.New(qdrantAddr, collection)
	if err != nil {
		logger.Error("qdrant connect failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	embedder := hfembed.New(envOr("HF_BASE_URL", hfembed.DefaultBaseURL), envOr("EMBED_MODEL", hfembed.DefaultModel), os.Getenv("HF_TOKEN"))
	generator := llm.New(llm.Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   envOr("CHAT_MODEL", llm.DefaultModel),
	})

	opts := rag.DefaultOptions()
	opts.TopN = *topN
	opts.TemplatePath = envOr("ROAMLY_PROMPT_PATH", opts.TemplatePath)
	svc, err := rag.New(embedder, store, generator, opts, logger)
	if err != nil {
		logger.Error("pipeline setup failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Println(boldGreen("Roamly attraction chat"))
	fmt.Printf("Collection: %s at %s, context size %d\n", boldCyan(collection), qdrantAddr, *topN)
	fmt.Println("Ask about attractions. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "exit") {
			break
		}

		ans, err := svc.Answer(ctx, query, *topN)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			fmt.Fprintf(os.Stderr, "Error (%s): %v\n", domain.KindOf(err), err)
			continue
		}

		fmt.Print(boldCyan("Roamly: "))
		if ans.Text == "" {
			fmt.Println(dim("(no answer)"))
		} else {
			fmt.Println(ans.Text)
		}
		for _, src := range ans.Sources {
			line := src.Name
			if src.City != "" {
				line += ", " + src.City
			}
			if src.Score != nil {
				line += fmt.Sprintf(" (%.3f)", *src.Score)
			}
			fmt.Println(dim("  source: " + line))
		}
		fmt.Println()
	}
}
