package structure

import (
	"strings"
	"testing"

	"github.com/coolbeans/pauta/pkg/anchor"
)

func TestStripNoise_RemovesArtifacts(t *testing.T) {
	input := strings.Join([]string{
		"84.17 - Fornos industriais",
		"42",
		"fls. 7",
		"- 12 -",
		"-",
		"*",
		"8417.10",
		"Texto que permanece.",
	}, "\n")

	got := StripNoise(input)

	if !strings.Contains(got, "84.17 - Fornos industriais") {
		t.Error("heading line should survive noise stripping")
	}
	if !strings.Contains(got, "Texto que permanece.") {
		t.Error("body text should survive noise stripping")
	}
	for _, noise := range []string{"42", "fls. 7", "- 12 -", "8417.10"} {
		for _, line := range strings.Split(got, "\n") {
			if strings.TrimSpace(line) == noise {
				t.Errorf("noise line %q was not removed", noise)
			}
		}
	}
}

func TestSplitBlocks(t *testing.T) {
	blocks := SplitBlocks("primeiro bloco\ncontinua\n\n\nsegundo bloco\n")
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0] != "primeiro bloco\ncontinua" || blocks[1] != "segundo bloco" {
		t.Errorf("unexpected blocks: %q", blocks)
	}
}

func TestClassifyBlock(t *testing.T) {
	cases := []struct {
		name  string
		block string
		kind  BlockKind
	}{
		{"position heading", "84.17 - Fornos industriais", BlockHeading},
		{"subposition heading", "8417.10 - Fornos de padaria", BlockHeading},
		{"ordered letter list", "a) primeiro item\nb) segundo item", BlockOrderedList},
		{"ordered digit list", "1. primeiro\n2. segundo", BlockOrderedList},
		{"ordered roman list", "i) primeiro\nii) segundo", BlockOrderedList},
		{"unordered list", "- um item\n- outro item", BlockUnorderedList},
		{"paragraph", "Um parágrafo qualquer de texto legal.", BlockParagraph},
		{"dash mid-text is not a list", "texto com - no meio", BlockParagraph},
	}
	for _, testCase := range cases {
		if got := ClassifyBlock(testCase.block); got.Kind != testCase.kind {
			t.Errorf("%s: ClassifyBlock kind = %v, want %v", testCase.name, got.Kind, testCase.kind)
		}
	}
}

func TestClassifyBlock_HeadingGranularity(t *testing.T) {
	position := ClassifyBlock("84.17 - Fornos industriais")
	if position.Level != 3 || position.Code != "84.17" {
		t.Errorf("position heading = %+v, want level 3 code 84.17", position)
	}

	subposition := ClassifyBlock("8417.10 - Fornos de padaria")
	if subposition.Level != 4 || subposition.Code != "8417.10" {
		t.Errorf("subposition heading = %+v, want level 4 code 8417.10", subposition)
	}
}

func TestClassifyBlock_ListContinuationLines(t *testing.T) {
	block := ClassifyBlock("a) um item que\ncontinua na linha seguinte\nb) outro item")
	if block.Kind != BlockOrderedList {
		t.Fatalf("kind = %v, want ordered list", block.Kind)
	}
	if len(block.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(block.Items))
	}
	if block.Items[0] != "a) um item que continua na linha seguinte" {
		t.Errorf("continuation not folded: %q", block.Items[0])
	}
}

func TestStructureText_HeadingAnchorsResolvable(t *testing.T) {
	raw := strings.Join([]string{
		"84.17 - Fornos industriais",
		"",
		"8417.10 - Fornos de padaria",
		"",
		"85.17 - Telefones",
	}, "\n")
	markup := StructureText(raw)

	// Every heading id must resolve via the codec from the same code.
	for _, code := range []string{"84.17", "8417.10", "85.17"} {
		wantID := anchor.ToAnchorID(code)
		if !strings.Contains(markup, `id="`+wantID+`"`) {
			t.Errorf("markup missing heading id %q for code %q", wantID, code)
		}
	}
	if !strings.Contains(markup, `<h3 class="section" id="pos-84-17">`) {
		t.Error("position heading should render as h3 with section class")
	}
	if !strings.Contains(markup, `<h4 class="subsection" id="pos-8417-10">`) {
		t.Error("subposition heading should render as h4 with subsection class")
	}
}

func TestStructureText_EscapesBeforeStructuring(t *testing.T) {
	markup := StructureText("Texto com <script>alert(1)</script> embutido.")
	if strings.Contains(markup, "<script>") {
		t.Error("raw markup must be escaped before structuring")
	}
	if !strings.Contains(markup, "&lt;script&gt;") {
		t.Error("escaped form should be present in the output")
	}
}

func TestStructureText_BoldAfterClassification(t *testing.T) {
	markup := StructureText("- item com **destaque** no meio")
	if !strings.Contains(markup, "<strong>destaque</strong>") {
		t.Errorf("bold markup not converted: %s", markup)
	}
	if !strings.Contains(markup, "<ul") {
		t.Error("bold markers must not prevent list classification")
	}
}

func TestStructureText_Lists(t *testing.T) {
	ordered := StructureText("a) primeiro\nb) segundo")
	if !strings.Contains(ordered, "<ol class=\"legal-list\">") ||
		!strings.Contains(ordered, "<li>a) primeiro</li>") {
		t.Errorf("ordered list output unexpected: %s", ordered)
	}

	unordered := StructureText("- primeiro\n- segundo")
	if !strings.Contains(unordered, "<ul class=\"legal-list\">") ||
		!strings.Contains(unordered, "<li>primeiro</li>") {
		t.Errorf("unordered list output unexpected: %s", unordered)
	}
}
