package render

import "github.com/microcosm-cc/bluemonday"

// sanitizePolicy is the allow-list for untrusted final markup: the
// structural and inline elements the structuring pipeline emits, the
// anchor/class attributes navigation depends on, and the data attributes
// carried by note references and code links. Everything else is stripped.
var sanitizePolicy = newSanitizePolicy()

func newSanitizePolicy() *bluemonday.Policy {
	policy := bluemonday.NewPolicy()
	policy.AllowElements(
		"h1", "h2", "h3", "h4", "h5", "h6",
		"section", "div", "p", "ul", "ol", "li",
		"span", "a", "strong", "em", "br",
	)
	policy.AllowAttrs("id", "class").Globally()
	policy.AllowAttrs("data-note", "data-chapter").OnElements("span")
	policy.AllowAttrs("data-code", "href").OnElements("a")
	// Code links are fragment URLs within the same document.
	policy.RequireParseableURLs(true)
	policy.AllowRelativeURLs(true)
	return policy
}

// Sanitize filters untrusted markup through the allow-list policy.
func Sanitize(markup string) string {
	return sanitizePolicy.Sanitize(markup)
}
