// Package clauses detects contract clause categories by keyword and extracts
// the surrounding text window for each match.
package clauses

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Category names a contract topic detected by keyword.
type Category string

const (
	Payment              Category = "payment"
	Termination          Category = "termination"
	Confidentiality      Category = "confidentiality"
	IntellectualProperty Category = "intellectual_property"
	GoverningLaw         Category = "governing_law"
	Liability            Category = "liability"
	DataProtection       Category = "data_protection"
)

// Window bounds in characters around each keyword match.
const (
	WindowBefore = 200
	WindowAfter  = 500
)

// Keywords maps each category to the literal keywords that identify it.
// Categories are evaluated in Categories order.
var Keywords = map[Category][]string{
	Payment:              {"payment", "fees", "invoice", "pricing", "charges", "compensation", "billing"},
	Termination:          {"termination", "terminate", "notice period", "cancellation", "expiry"},
	Confidentiality:      {"confidential", "non-disclosure", "nda", "proprietary", "confidentiality"},
	IntellectualProperty: {"intellectual property", "ip", "ownership", "copyright", "patent", "trademark"},
	GoverningLaw:         {"governing law", "jurisdiction", "applicable law", "court"},
	Liability:            {"liability", "damages", "indemnity", "limitation of liability"},
	DataProtection:       {"gdpr", "data protection", "privacy", "personal data", "processing"},
}

// Categories lists every category in extraction order.
var Categories = []Category{
	Payment,
	Termination,
	Confidentiality,
	IntellectualProperty,
	GoverningLaw,
	Liability,
	DataProtection,
}

var patterns = compile()

func compile() map[Category]*regexp.Regexp {
	out := make(map[Category]*regexp.Regexp, len(Keywords))
	for cat, words := range Keywords {
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		out[cat] = regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))
	}
	return out
}

// Result holds the matched windows per category and the categories with no match.
// A category absent from Clauses is listed in Missing.
type Result struct {
	Clauses map[Category]string `json:"clauses"`
	Missing []Category          `json:"missing_clauses"`
}

// Found reports whether a window was extracted for cat.
func (r Result) Found(cat Category) bool {
	_, ok := r.Clauses[cat]
	return ok
}

// Texts returns the extracted windows in category order, skipping missing ones.
func (r Result) Texts() []string {
	out := make([]string, 0, len(r.Clauses))
	for _, cat := range Categories {
		if text, ok := r.Clauses[cat]; ok {
			out = append(out, text)
		}
	}
	return out
}

// Extract scans text for every category. For each match the window
// [start-WindowBefore, end+WindowAfter], clamped to the text, is taken from the
// original text. Duplicate windows within a category are collapsed and the
// remainder joined with newlines.
func Extract(text string) Result {
	r := Result{
		Clauses: make(map[Category]string),
		Missing: make([]Category, 0),
	}

	idx := newRuneIndex(text)

	for _, cat := range Categories {
		matches := patterns[cat].FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			r.Missing = append(r.Missing, cat)
			continue
		}

		seen := make(map[string]struct{}, len(matches))
		windows := make([]string, 0, len(matches))
		for _, m := range matches {
			w := idx.window(m[0], m[1])
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			windows = append(windows, w)
		}

		r.Clauses[cat] = strings.Join(windows, "\n")
	}

	return r
}

// Window returns the extraction window for a match at byte offsets [start, end).
func Window(text string, start, end int) string {
	return newRuneIndex(text).window(start, end)
}

// runeIndex converts byte offsets to character offsets so windows never
// split a multi-byte rune.
type runeIndex struct {
	text    string
	ascii   bool
	offsets []int
}

func newRuneIndex(text string) runeIndex {
	ri := runeIndex{text: text, ascii: isASCII(text)}
	if ri.ascii {
		return ri
	}

	ri.offsets = make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		ri.offsets = append(ri.offsets, i)
	}
	ri.offsets = append(ri.offsets, len(text))
	return ri
}

func (ri runeIndex) window(start, end int) string {
	if ri.ascii {
		lo := max(start-WindowBefore, 0)
		hi := min(end+WindowAfter, len(ri.text))
		return ri.text[lo:hi]
	}

	rs := ri.runeOf(start)
	re := ri.runeOf(end)
	lo := max(rs-WindowBefore, 0)
	hi := min(re+WindowAfter, len(ri.offsets)-1)
	return ri.text[ri.offsets[lo]:ri.offsets[hi]]
}

func (ri runeIndex) runeOf(byteOff int) int {
	i, _ := slices.BinarySearch(ri.offsets, byteOff)
	return i
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
