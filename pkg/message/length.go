package message

import (
	"strings"
	"unicode/utf16"
)

// MaxLength is the Telegram Bot API limit on one message text, counted in
// UTF-16 code units.
const MaxLength = 4096

// Length counts s the way Telegram does.
func Length(s string) int {
	n := 0
	for _, r := range s {
		if w := utf16.RuneLen(r); w > 0 {
			n += w
		} else {
			n++
		}
	}
	return n
}

// Split breaks text into chunks of at most limit units at blank-line
// boundaries so no HTML block is cut. A single block over the limit is cut
// on a rune boundary.
func Split(text string, limit int) []string {
	if limit <= 0 || Length(text) <= limit {
		return []string{text}
	}
	var (
		out []string
		cur string
	)
	for _, para := range strings.Split(text, "\n\n") {
		for Length(para) > limit {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			head, rest := cutAt(para, limit)
			out = append(out, head)
			para = rest
		}
		switch {
		case para == "":
		case cur == "":
			cur = para
		case Length(cur)+2+Length(para) <= limit:
			cur += "\n\n" + para
		default:
			out = append(out, cur)
			cur = para
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func cutAt(s string, limit int) (string, string) {
	n := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		if n+w > limit && i > 0 {
			return s[:i], s[i:]
		}
		n += w
	}
	return s, ""
}
