package render

import "strings"

// htmlReplacer escapes text content.
var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// attrReplacer escapes attribute values, additionally encoding
// whitespace that could break attribute parsing.
var attrReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"\n", "&#10;",
	"\r", "&#13;",
	"\t", "&#9;",
)

func escapeHTML(s string) string { return htmlReplacer.Replace(s) }

func escapeAttr(s string) string { return attrReplacer.Replace(s) }
