package captions_test

import (
	"errors"
	"math"
	"testing"

	"dubstudio/internal/captions"
	"dubstudio/internal/services"
)

func TestNormalizeValidatesSegments(t *testing.T) {
	caps, report := captions.Normalize([]captions.Segment{
		{Start: 4, End: 6, Text: " second "},
		{Start: -1, End: 2, Text: "first"},
		{Start: 3, End: 3, Text: "empty"},
		{Start: math.NaN(), End: 1, Text: "nan"},
		{Start: 1, End: math.Inf(1), Text: "inf"},
	})
	if report.Accepted != 2 || report.Dropped != 3 || report.Clamped != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(caps) != 2 {
		t.Fatalf("expected 2 captions, got %d", len(caps))
	}
	if caps[0].Start != 0 || caps[0].Text != "first" || caps[0].ID != "caption-0" {
		t.Fatalf("unexpected first caption: %+v", caps[0])
	}
	if caps[1].Text != "second" || caps[1].ID != "caption-1" {
		t.Fatalf("unexpected second caption: %+v", caps[1])
	}
	if err := captions.Validate(caps); err != nil {
		t.Fatalf("normalized set should validate: %v", err)
	}
}

func TestNormalizeStableOnEqualStart(t *testing.T) {
	caps, _ := captions.Normalize([]captions.Segment{
		{Start: 1, End: 2, Text: "x"},
		{Start: 1, End: 3, Text: "y"},
	})
	if caps[0].Text != "x" || caps[1].Text != "y" {
		t.Fatalf("expected backend order preserved, got %+v", caps)
	}
}

func TestValidateRejectsBadSets(t *testing.T) {
	cases := map[string][]captions.Caption{
		"empty id":  {{ID: "", Start: 0, End: 1}},
		"duplicate": {{ID: "a", Start: 0, End: 1}, {ID: "a", Start: 1, End: 2}},
		"interval":  {{ID: "a", Start: 2, End: 1}},
		"unsorted":  {{ID: "a", Start: 3, End: 4}, {ID: "b", Start: 1, End: 2}},
	}
	for name, caps := range cases {
		if err := captions.Validate(caps); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestStoreUpdateText(t *testing.T) {
	store := captions.NewStore(nil)
	store.Replace([]captions.Segment{{Start: 0, End: 1, Text: "hello"}})
	if err := store.UpdateText("caption-0", "hi"); err != nil {
		t.Fatalf("UpdateText: %v", err)
	}
	if got := store.Captions()[0].Text; got != "hi" {
		t.Fatalf("expected edited text, got %q", got)
	}
	err := store.UpdateText("missing", "x")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreApplyTranslationAllOrNothing(t *testing.T) {
	store := captions.NewStore(nil)
	store.Replace([]captions.Segment{
		{Start: 0, End: 1, Text: "one"},
		{Start: 1, End: 2, Text: "two"},
	})
	bad := store.Captions()
	bad[0].Text = "uno"
	bad[1].End = 9
	err := store.ApplyTranslation(bad)
	if !errors.Is(err, services.ErrCollaborator) {
		t.Fatalf("expected collaborator error, got %v", err)
	}
	if got := store.Captions()[0].Text; got != "one" {
		t.Fatalf("store must be untouched after failed translation, got %q", got)
	}

	good := store.Captions()
	good[0].Text = "uno"
	good[1].Text = "dos"
	if err := store.ApplyTranslation(good); err != nil {
		t.Fatalf("ApplyTranslation: %v", err)
	}
	caps := store.Captions()
	if caps[0].Text != "uno" || caps[1].Text != "dos" {
		t.Fatalf("unexpected translated captions: %+v", caps)
	}
}

func TestStoreApplyTranslationRejectsShortSet(t *testing.T) {
	store := captions.NewStore([]captions.Caption{{ID: "a", Start: 0, End: 1, Text: "x"}})
	if err := store.ApplyTranslation(nil); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	store := captions.NewStore([]captions.Caption{{ID: "a", Start: 0, End: 5, Text: "original"}})
	snap := store.Snapshot()
	if err := store.UpdateText("a", "edited"); err != nil {
		t.Fatalf("UpdateText: %v", err)
	}
	got, ok := snap.Active(1)
	if !ok || got.Text != "original" {
		t.Fatalf("snapshot changed after edit: %+v", got)
	}
	if got, _ := store.Snapshot().Active(1); got.Text != "edited" {
		t.Fatalf("new snapshot should see edit, got %q", got.Text)
	}
}

func TestStoreLoadRejectsInvalid(t *testing.T) {
	store := captions.NewStore(nil)
	err := store.Load([]captions.Caption{{ID: "a", Start: 1, End: 0}})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store after rejected load, got %d", store.Len())
	}
}
