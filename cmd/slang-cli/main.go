package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/lexiglot/lexiglot/internal/llm"
	"github.com/lexiglot/lexiglot/pkg/lexiglot"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/lexicon"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/store"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/store/sqlite"
)

func main() {
	var (
		dbPath      = flag.String("db", "", "SQLite lexicon database path")
		lexiconPath = flag.String("lexicon", "", "YAML lexicon file path")
		ageMax      = flag.String("age-max", "mature_18", "Age ceiling: everyone, teen_13, teen_16, mature_18")
		ageMode     = flag.String("age-mode", "skip", "Age filter mode: skip or annotate")
		text        = flag.String("text", "", "One-shot text to scan (non-interactive mode)")
		translate   = flag.Bool("translate", false, "Translate via the configured model after detection")
		model       = flag.String("model", "gpt-4o-mini", "Chat model for --translate")
		apiKey      = flag.String("api-key", os.Getenv("OPENAI_API_KEY"), "API key for --translate")
	)
	flag.Parse()

	if *dbPath == "" && *lexiconPath == "" {
		log.Fatal("--db or --lexicon required")
	}

	ceiling, err := lexicon.ParseAgeRating(*ageMax)
	if err != nil {
		log.Fatal(err)
	}
	mode, err := lexicon.ParseFilterMode(*ageMode)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	snap, cleanup, err := loadSnapshot(ctx, *dbPath, *lexiconPath)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	engine := lexiglot.New(lexiglot.Options{
		Snapshot:   snap,
		MaxRating:  ceiling,
		FilterMode: mode,
	})

	var translator *llm.Translator
	if *translate {
		if *apiKey == "" {
			log.Fatal("--translate requires --api-key or OPENAI_API_KEY")
		}
		translator = llm.New(*apiKey, *model)
	}

	// One-shot mode
	if *text != "" {
		if err := scan(ctx, engine, translator, *text); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  Lexiglot Slang CLI")
	fmt.Printf("  %d lexicon entries, ceiling %s (%s)\n", snap.Len(), ceiling, mode)
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Type text to scan (Ctrl+D to exit):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := scan(ctx, engine, translator, line); err != nil {
			fmt.Println("Error:", err)
		}
	}

	fmt.Println("\nGoodbye!")
}

func scan(ctx context.Context, engine *lexiglot.Engine, translator *llm.Translator, text string) error {
	spans := engine.Detect(text)

	if len(spans) == 0 {
		fmt.Println("No slang detected.")
		fmt.Println()
		return nil
	}

	out, err := json.MarshalIndent(spans, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if translator != nil {
		res, err := translator.Translate(ctx, text, spans)
		if err != nil {
			return fmt.Errorf("translate: %w", err)
		}
		fmt.Printf("\nTranslation [%s]: %s\n", res.ID, res.Text)
		fmt.Printf("Applied terms: %v, confidence %.2f", res.AppliedTerms, res.Confidence)
		if res.Degraded {
			fmt.Print(" (degraded fallback)")
		}
		fmt.Println()
	}
	fmt.Println()
	return nil
}

func loadSnapshot(ctx context.Context, dbPath, lexiconPath string) (*lexicon.Snapshot, func(), error) {
	if lexiconPath != "" {
		snap, err := lexicon.LoadFromYAML(lexiconPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load lexicon: %w", err)
		}
		return snap, func() {}, nil
	}

	st, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	snap, err := store.Snapshot(ctx, st)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("materialize snapshot: %w", err)
	}
	return snap, func() { st.Close() }, nil
}
