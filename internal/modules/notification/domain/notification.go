package domain

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// CaptionLimit is the media caption limit in UTF-16 code units
const CaptionLimit = 1024

var (
	boldMarkdown   = regexp.MustCompile(`\*([^*\n]+)\*`)
	italicMarkdown = regexp.MustCompile(`_([^_\n]+)_`)
	htmlTag        = regexp.MustCompile(`<(/?)([a-zA-Z][a-zA-Z0-9-]*)[^>]*>`)
)

// Payload is what one match delivers: an HTML caption and its photos in
// posting order
type Payload struct {
	Caption string
	Photos  [][]byte
}

// Method picks the delivery method from the number of photos
func (p Payload) Method() DeliveryMethod {
	switch len(p.Photos) {
	case 0:
		return DeliveryMethodText
	case 1:
		return DeliveryMethodPhoto
	default:
		return DeliveryMethodAlbum
	}
}

// RecipientResult is the result of one send to one recipient
type RecipientResult struct {
	Recipient string
	Err       error
}

// OK reports whether the send succeeded
func (r RecipientResult) OK() bool {
	return r.Err == nil
}

// Outcome summarizes one delivery. Degraded is set when the outcome is a
// plain-text resend after a media method reached nobody.
type Outcome struct {
	Method    DeliveryMethod
	Results   []RecipientResult
	Succeeded int
	Total     int
	Degraded  bool
}

// Delivered reports whether at least one recipient got the notification
func (o Outcome) Delivered() bool {
	return o.Succeeded > 0
}

// TruncateCaption cuts s to at most limit UTF-16 code units without
// splitting a surrogate pair, an HTML tag or an entity. Tags left open by
// the cut are closed within the limit.
func TruncateCaption(s string, limit int) string {
	if utf16Len(s) <= limit {
		return s
	}

	budget := limit
	for {
		out := cutUnits(s, budget)
		closing := closingTags(out)
		if budget <= 0 || utf16Len(out)+utf16Len(closing) <= limit {
			return out + closing
		}
		budget--
	}
}

func cutUnits(s string, limit int) string {
	var (
		b     strings.Builder
		units int
	)
	for _, r := range s {
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > limit {
			break
		}
		units += n
		b.WriteRune(r)
	}

	out := b.String()
	if i := strings.LastIndexByte(out, '<'); i >= 0 && !strings.Contains(out[i:], ">") {
		out = out[:i]
	}
	if i := strings.LastIndexByte(out, '&'); i >= 0 && !strings.Contains(out[i:], ";") {
		out = out[:i]
	}
	return out
}

// closingTags returns the end tags for every element still open in s,
// innermost first
func closingTags(s string) string {
	var open []string
	for _, m := range htmlTag.FindAllStringSubmatch(s, -1) {
		name := strings.ToLower(m[2])
		if m[1] == "" {
			open = append(open, name)
			continue
		}
		for k := len(open) - 1; k >= 0; k-- {
			if open[k] == name {
				open = slices.Delete(open, k, k+1)
				break
			}
		}
	}

	var b strings.Builder
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString("</" + open[i] + ">")
	}
	return b.String()
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// MarkdownToHTML converts *bold* and _italic_ spans to HTML tags. A marker
// glued to a word character (as in flats_kyiv_daily) is left alone.
func MarkdownToHTML(s string) string {
	s = replaceSpans(s, boldMarkdown, "b")
	return replaceSpans(s, italicMarkdown, "i")
}

func replaceSpans(s string, re *regexp.Regexp, tag string) string {
	var (
		b    strings.Builder
		last int
	)
	for _, m := range re.FindAllStringSubmatchIndex(s, -1) {
		start, end := m[0], m[1]
		if gluedBefore(s, start) || gluedAfter(s, end) {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString("<" + tag + ">")
		b.WriteString(s[m[2]:m[3]])
		b.WriteString("</" + tag + ">")
		last = end
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

func gluedBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordRune(r)
}

func gluedAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || r == '/' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
