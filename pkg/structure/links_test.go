package structure

import (
	"strings"
	"testing"
)

func TestInjectReferences_NoteWithoutChapter(t *testing.T) {
	got := InjectReferences("Ver Nota 2 para detalhes.")
	want := `<span class="note-ref" data-note="2">Nota 2</span>`
	if !strings.Contains(got, want) {
		t.Errorf("note reference not injected: %s", got)
	}
}

func TestInjectReferences_NoteWithChapter(t *testing.T) {
	got := InjectReferences("Conforme a Nota 4 do Capítulo 85.")
	if !strings.Contains(got, `data-note="4"`) || !strings.Contains(got, `data-chapter="85"`) {
		t.Errorf("chapter-scoped note reference not injected: %s", got)
	}
}

func TestInjectReferences_CodeLink(t *testing.T) {
	got := InjectReferences("As máquinas da posição 84.19 estão excluídas.")
	if !strings.Contains(got, `<a class="code-link" href="#pos-84-19" data-code="8419">84.19</a>`) {
		t.Errorf("code mention not linked: %s", got)
	}
}

func TestInjectReferences_SubpositionCodeLink(t *testing.T) {
	got := InjectReferences("Exceto os produtos de 8417.10 em geral.")
	if !strings.Contains(got, `data-code="841710"`) {
		t.Errorf("subposition code mention not linked: %s", got)
	}
}

func TestInjectReferences_ExclusionHighlight(t *testing.T) {
	got := InjectReferences("A presente posição não compreende os fornos elétricos.")
	if !strings.Contains(got, `<em class="exclusion">não compreende</em>`) {
		t.Errorf("exclusion phrase not highlighted: %s", got)
	}
}

func TestInjectReferences_SkipsExistingTags(t *testing.T) {
	// The attribute value and the already-linked text must not be touched.
	input := `<a class="code-link" href="#pos-84-17" data-code="8417">84.17</a> e texto com 85.17 livre`
	got := InjectReferences(input)

	if strings.Count(got, `href="#pos-84-17"`) != 1 {
		t.Errorf("existing link attribute was modified: %s", got)
	}
	if strings.Contains(got, `<a class="code-link" href="#pos-84-17" data-code="8417"><a`) {
		t.Errorf("already-linked code was double-wrapped: %s", got)
	}
	if !strings.Contains(got, `data-code="8517"`) {
		t.Errorf("free code mention outside tags should still be linked: %s", got)
	}
}

func TestInjectReferences_AttributeTextUntouched(t *testing.T) {
	input := `<span title="Nota 2 do Capítulo 85">texto</span>`
	got := InjectReferences(input)
	if !strings.Contains(got, `title="Nota 2 do Capítulo 85"`) {
		t.Errorf("attribute content was corrupted: %s", got)
	}
}

func TestMapOutsideTags_PreservesTagSpans(t *testing.T) {
	upper := func(s string) string { return strings.ToUpper(s) }
	got := mapOutsideTags("abc<b>keep</b>def", upper)
	if got != "ABC<b>KEEP</b>DEF" {
		t.Errorf("mapOutsideTags = %q", got)
	}
	if mapOutsideTags("plain", upper) != "PLAIN" {
		t.Error("text without tags should be transformed whole")
	}
}
