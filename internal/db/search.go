package db

import (
	"fmt"
	"strings"
)

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}

// tagEscaper escapes RediSearch TAG special characters.
var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

// EscapeTag escapes a value for use inside an FT.SEARCH TAG filter.
func EscapeTag(v string) string {
	return tagEscaper.Replace(v)
}

// TagFilter builds an FT.SEARCH TAG filter: @field:{v1|v2|...}.
func TagFilter(field string, values ...string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = EscapeTag(v)
	}
	return fmt.Sprintf("@%s:{%s}", field, strings.Join(escaped, "|"))
}

// NumericMinFilter builds an FT.SEARCH numeric range filter: @field:[min +inf].
func NumericMinFilter(field string, min int) string {
	return fmt.Sprintf("@%s:[%d +inf]", field, min)
}
