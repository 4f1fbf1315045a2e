// Command import-lexicon imports slang entries from an HTML glossary page
// (definition lists: <dt>term</dt><dd>meaning</dd>) into a SQLite lexicon
// database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/lexicon"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/store/sqlite"
)

func main() {
	var (
		dbPath     = flag.String("db", "", "SQLite lexicon database path (required)")
		source     = flag.String("source", "", "Glossary URL or local HTML file (required)")
		rating     = flag.String("rating", "everyone", "Default age rating for imported entries")
		confidence = flag.Float64("confidence", 0.7, "Default confidence for imported entries")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *source == "" {
		log.Fatal("--source required")
	}

	age, err := lexicon.ParseAgeRating(*rating)
	if err != nil {
		log.Fatal(err)
	}

	data, err := fetch(*source)
	if err != nil {
		log.Fatal("Fetch glossary:", err)
	}

	entries, err := ParseGlossary(data, age, *confidence)
	if err != nil {
		log.Fatal("Parse glossary:", err)
	}
	if len(entries) == 0 {
		log.Fatal("No <dt>/<dd> definition pairs found in source")
	}

	ctx := context.Background()
	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatal("Open store:", err)
	}
	defer st.Close()

	imported := 0
	for _, e := range entries {
		if err := st.UpsertEntry(ctx, e); err != nil {
			log.Printf("Upsert %q: %v", e.Term, err)
			continue
		}
		imported++
	}

	total, err := st.Count(ctx)
	if err != nil {
		log.Fatal("Count:", err)
	}
	fmt.Printf("Imported %d entries (%d total in %s)\n", imported, total, *dbPath)
}

func fetch(source string) (string, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		return string(data), err
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(source)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: %s", source, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	return string(data), err
}

// ParseGlossary extracts term entries from <dt>/<dd> definition pairs.
// Each <dt> opens an entry; comma-separated forms after the first become
// variants. The following <dd> supplies the gloss.
func ParseGlossary(src string, age lexicon.AgeRating, confidence float64) ([]lexicon.Entry, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}

	var entries []lexicon.Entry
	var pending *lexicon.Entry

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "dt":
				flush(&entries, &pending)
				forms := splitForms(textContent(n))
				if len(forms) > 0 {
					pending = &lexicon.Entry{
						Term:       forms[0],
						Variants:   forms,
						Confidence: confidence,
						Age:        age,
					}
				}
			case "dd":
				if pending != nil {
					gloss := strings.TrimSpace(textContent(n))
					if gloss != "" {
						pending.Gloss = lexicon.Simple(gloss)
					}
					flush(&entries, &pending)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	flush(&entries, &pending)

	return entries, nil
}

func flush(entries *[]lexicon.Entry, pending **lexicon.Entry) {
	if *pending == nil {
		return
	}
	if (*pending).Term != "" {
		*entries = append(*entries, **pending)
	}
	*pending = nil
}

func splitForms(s string) []string {
	var forms []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			forms = append(forms, part)
		}
	}
	return forms
}

// textContent collects the concatenated text below a node.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
