package document

import (
	"reflect"
	"testing"
)

func TestSortedChapterNumbers_NumericOrder(t *testing.T) {
	chapters := map[string]ChapterRecord{
		"85":  {ChapterNumber: "85"},
		"7":   {ChapterNumber: "7"},
		"84":  {ChapterNumber: "84"},
		"101": {ChapterNumber: "101"},
	}
	got := SortedChapterNumbers(chapters)
	want := []string{"7", "84", "85", "101"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedChapterNumbers = %v, want %v", got, want)
	}
}

func TestSortedChapterNumbers_NonNumericSortLast(t *testing.T) {
	chapters := map[string]ChapterRecord{
		"anexo": {},
		"84":    {},
		"9":     {},
	}
	got := SortedChapterNumbers(chapters)
	want := []string{"9", "84", "anexo"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedChapterNumbers = %v, want %v", got, want)
	}
}

func TestEffectiveAnchorID(t *testing.T) {
	derived := PositionRecord{Code: "84.17"}
	if got := derived.EffectiveAnchorID(); got != "pos-84-17" {
		t.Errorf("derived anchor = %q, want pos-84-17", got)
	}

	explicit := PositionRecord{Code: "84.17", AnchorID: "pos-custom-1"}
	if got := explicit.EffectiveAnchorID(); got != "pos-custom-1" {
		t.Errorf("explicit anchor = %q, want pos-custom-1", got)
	}
}

func TestChapterSections_Empty(t *testing.T) {
	var nilSections *ChapterSections
	if !nilSections.Empty() {
		t.Error("nil sections should be empty")
	}
	if !(&ChapterSections{}).Empty() {
		t.Error("zero sections should be empty")
	}
	if (&ChapterSections{Notas: "Nota 1"}).Empty() {
		t.Error("sections with notes should not be empty")
	}
}

func TestPayload_Empty(t *testing.T) {
	if !(Payload{}).Empty() {
		t.Error("zero payload should be empty")
	}
	if (Payload{Markup: "<p>x</p>"}).Empty() {
		t.Error("payload with markup should not be empty")
	}
}
