package anchor

import "testing"

func TestToAnchorID_CanonicalForm(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"84.17", "pos-84-17"},
		{"8417.10", "pos-8417-10"},
		{"84.17.10", "pos-84-17-10"},
		{" 85.17 ", "pos-85-17"},
		{"84 17", "pos-84-17"},
		{"84..17", "pos-84-17"},
		{"", ""},
		{"   ", ""},
		{"...", ""},
	}
	for _, testCase := range cases {
		if got := ToAnchorID(testCase.code); got != testCase.want {
			t.Errorf("ToAnchorID(%q) = %q, want %q", testCase.code, got, testCase.want)
		}
	}
}

func TestToAnchorID_Idempotent(t *testing.T) {
	inputs := []string{"84.17", "8417.10", "pos-84-17", "cap-84", "85 17", "", "nota geral"}
	for _, input := range inputs {
		once := ToAnchorID(input)
		twice := ToAnchorID(once)
		if once != twice {
			t.Errorf("ToAnchorID not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestToChapterAnchorID(t *testing.T) {
	cases := []struct {
		chapter string
		want    string
	}{
		{"84", "cap-84"},
		{" 07 ", "cap-07"},
		{"cap-84", "cap-84"},
		{"", ""},
	}
	for _, testCase := range cases {
		if got := ToChapterAnchorID(testCase.chapter); got != testCase.want {
			t.Errorf("ToChapterAnchorID(%q) = %q, want %q", testCase.chapter, got, testCase.want)
		}
	}
}

func TestSectionAnchorID(t *testing.T) {
	if got := SectionAnchorID("84", "Notas"); got != "cap-84-notas" {
		t.Errorf("SectionAnchorID(84, Notas) = %q, want cap-84-notas", got)
	}
	if got := SectionAnchorID("84", ""); got != "" {
		t.Errorf("SectionAnchorID with empty section = %q, want empty", got)
	}
	if got := SectionAnchorID("", "notas"); got != "" {
		t.Errorf("SectionAnchorID with empty chapter = %q, want empty", got)
	}
}

func TestNormalizeQuery(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"8417", "84.17"},
		{"84.17", "84.17"},
		{"NCM 8417,10", "84.17"},
		{"841710", "84.17"},
		{"  85-17  ", "85.17"},
		{"84", ""},
		{"telefones", ""},
		{"", ""},
	}
	for _, testCase := range cases {
		if got := NormalizeQuery(testCase.query); got != testCase.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", testCase.query, got, testCase.want)
		}
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("84.17.10-x"); got != "841710" {
		t.Errorf("Digits = %q, want 841710", got)
	}
}

func TestTarget_DropsEmptyAndDuplicates(t *testing.T) {
	target := NewTarget("pos-84-17", "", "pos-84-17", "cap-84")
	candidates := target.Candidates()
	if len(candidates) != 2 || candidates[0] != "pos-84-17" || candidates[1] != "cap-84" {
		t.Errorf("unexpected candidates: %v", candidates)
	}
}

func TestTarget_Equal(t *testing.T) {
	first := NewTarget("pos-84-17", "cap-84")
	same := NewTarget("pos-84-17", "cap-84")
	reordered := NewTarget("cap-84", "pos-84-17")
	shorter := NewTarget("pos-84-17")

	if !first.Equal(same) {
		t.Error("identical targets should be equal")
	}
	if first.Equal(reordered) {
		t.Error("order matters for target equality")
	}
	if first.Equal(shorter) {
		t.Error("different lengths should not be equal")
	}
	if !NewTarget().Equal(NewTarget()) {
		t.Error("empty targets should be equal")
	}
	if !NewTarget().Empty() {
		t.Error("empty target should report Empty")
	}
}
