package memstore

import (
	"context"
	"testing"

	"github.com/lexiglot/lexiglot/pkg/lexiglot/lexicon"
	"github.com/lexiglot/lexiglot/pkg/lexiglot/store"
)

func TestMemstoreCRUD(t *testing.T) {
	ctx := context.Background()
	st := New()
	defer st.Close()

	entry := lexicon.Entry{
		Term:       "Bussin",
		Variants:   []string{"bussin", "bussing"},
		Gloss:      lexicon.Simple("really good"),
		Confidence: 0.9,
		Age:        lexicon.Everyone,
	}
	if err := st.UpsertEntry(ctx, entry); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}

	got, found, err := st.GetEntry(ctx, "BUSSIN")
	if err != nil || !found {
		t.Fatalf("GetEntry: found=%v err=%v", found, err)
	}
	if got.Term != "bussin" {
		t.Errorf("term should be lowercased, got %q", got.Term)
	}
	if g, ok := got.DefaultGloss(); !ok || g != "really good" {
		t.Errorf("gloss = %q, %v", g, ok)
	}

	n, err := st.Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("Count = %d, %v", n, err)
	}

	if err := st.DeleteEntry(ctx, "bussin"); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if _, found, _ := st.GetEntry(ctx, "bussin"); found {
		t.Error("entry should be gone after delete")
	}
}

func TestMemstoreListOrdered(t *testing.T) {
	ctx := context.Background()
	st := New()

	for _, term := range []string{"zonked", "bussin", "mid"} {
		if err := st.UpsertEntry(ctx, lexicon.Entry{Term: term, Confidence: 0.5}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := st.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	want := []string{"bussin", "mid", "zonked"}
	for i, e := range entries {
		if e.Term != want[i] {
			t.Errorf("entries[%d] = %q, want %q", i, e.Term, want[i])
		}
	}
}

func TestMemstoreSnapshot(t *testing.T) {
	ctx := context.Background()
	st := New()

	if err := st.UpsertEntry(ctx, lexicon.Entry{
		Term:       "no cap",
		Gloss:      lexicon.Simple("no lie"),
		Confidence: 0.85,
	}); err != nil {
		t.Fatal(err)
	}

	snap, err := store.Snapshot(ctx, st)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Len() != 1 || snap.Entry(0).Term != "no cap" {
		t.Errorf("snapshot = %+v", snap.Entries())
	}
	if snap.Entry(0).Variants[0] != "no cap" {
		t.Errorf("canonical should lead the variant list: %v", snap.Entry(0).Variants)
	}
}
