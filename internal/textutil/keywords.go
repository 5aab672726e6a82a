package textutil

import (
	"strings"
	"unicode"
)

// MaxTags bounds the tag set attached to one article.
const MaxTags = 8

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`about above after again against among amid been before being below
		between both could during each from further have having here into more most other over
		says said should some such than that their them then there these they this those through
		under until very what when where which while will with would your year years news today
		just like also after amid still make made first last week month report reports update live`) {
		stopwords[w] = struct{}{}
	}
}

// Keywords extracts up to max distinct lower-case keywords from text.
// Words shorter than four letters and common stopwords are skipped.
func Keywords(text string, max int) []string {
	if max <= 0 {
		return nil
	}
	words := strings.FieldsFunc(strings.ToLower(StripHTML(text)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, max)
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len([]rune(w)) < 4 {
			continue
		}
		if _, skip := stopwords[w]; skip {
			continue
		}
		if isNumber(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == max {
			break
		}
	}
	return out
}

// MergeTags unions tag lists case-insensitively, keeping first-seen order.
func MergeTags(max int, lists ...[]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, t := range list {
			t = strings.ToLower(CollapseSpace(t))
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
			if len(out) == max {
				return out
			}
		}
	}
	return out
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
