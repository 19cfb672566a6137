package delivery

import (
	"html"
	"strings"
	"unicode/utf8"

	"NewsDigest/internal/sanitize"
)

// Split cuts text into chunks of at most limit runes, only at line
// boundaries. Lines are packed greedily. A single line longer than limit is
// reduced to its escaped plain text, truncated with "..." and counted in
// truncated. Dropping the markup keeps a cut line free of unclosed tags.
func Split(text string, limit int) (chunks []string, truncated int) {
	if strings.TrimSpace(text) == "" || limit <= 0 {
		return nil, 0
	}

	var (
		current strings.Builder
		size    int
		started bool
	)
	for _, line := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(line)
		if n > limit {
			line = shortenLine(line, limit)
			n = utf8.RuneCountInString(line)
			truncated++
		}

		if started && size+1+n > limit {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
			started = false
		}
		if started {
			current.WriteByte('\n')
			size++
		}
		current.WriteString(line)
		size += n
		started = true
	}
	if started {
		chunks = append(chunks, current.String())
	}
	return chunks, truncated
}

func shortenLine(line string, limit int) string {
	plain := sanitize.StripTags(line)
	for budget := limit; budget > 0; {
		out := html.EscapeString(sanitize.TruncateEllipsis(plain, budget))
		n := utf8.RuneCountInString(out)
		if n <= limit {
			return out
		}
		budget -= n - limit
	}
	return ""
}
