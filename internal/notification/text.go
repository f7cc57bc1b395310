package notification

import (
	"strings"
	"unicode"
)

// Legacy formatting codes are introduced by '§' (or '&' in locale files)
// followed by one character: 0-9a-f for colors, k-o for decorations, r to reset.
const formatMarker = '§'

// Segment is a run of text sharing one style.
type Segment struct {
	Text          string
	Color         rune // '0'..'f', 0 for the client default
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Obfuscated    bool
}

func (s Segment) sameStyle(o Segment) bool {
	return s.Color == o.Color && s.Bold == o.Bold && s.Italic == o.Italic &&
		s.Underline == o.Underline && s.Strikethrough == o.Strikethrough && s.Obfuscated == o.Obfuscated
}

func (s Segment) plainStyle() bool {
	return s.Color == 0 && !s.Bold && !s.Italic && !s.Underline && !s.Strikethrough && !s.Obfuscated
}

// Text is rendered message content: either a plain string or a styled,
// segmented value. It carries no channel information.
type Text struct {
	plain    string
	segments []Segment
	styled   bool
}

// PlainText wraps s as-is. Plain text can only be written to chat.
func PlainText(s string) Text { return Text{plain: s} }

// StyledText parses formatting codes in s into segments.
func StyledText(s string) Text {
	return Text{plain: s, segments: parseSegments(s), styled: true}
}

// IsStyled reports whether t has a segmented representation.
func (t Text) IsStyled() bool { return t.styled }

// IsZero reports whether t is empty.
func (t Text) IsZero() bool { return t.plain == "" && len(t.segments) == 0 }

// Segments returns a copy of the styled segments (nil for plain text).
func (t Text) Segments() []Segment {
	if !t.styled {
		return nil
	}
	return append([]Segment(nil), t.segments...)
}

// String returns the text with formatting codes, suitable for legacy clients.
func (t Text) String() string {
	if !t.styled {
		return t.plain
	}
	return t.Legacy()
}

// Unformatted returns the text with all formatting codes removed.
func (t Text) Unformatted() string {
	if !t.styled {
		return stripCodes(t.plain)
	}
	var b strings.Builder
	for _, s := range t.segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Legacy re-encodes the segments with '§' codes.
func (t Text) Legacy() string {
	var b strings.Builder
	for i, s := range t.segments {
		if i > 0 && s.plainStyle() {
			b.WriteRune(formatMarker)
			b.WriteRune('r')
		}
		if s.Color != 0 {
			b.WriteRune(formatMarker)
			b.WriteRune(s.Color)
		}
		for _, d := range []struct {
			on   bool
			code rune
		}{{s.Obfuscated, 'k'}, {s.Bold, 'l'}, {s.Strikethrough, 'm'}, {s.Underline, 'n'}, {s.Italic, 'o'}} {
			if d.on {
				b.WriteRune(formatMarker)
				b.WriteRune(d.code)
			}
		}
		b.WriteString(s.Text)
	}
	return b.String()
}

func isMarker(r rune) bool { return r == formatMarker || r == '&' }

func isCode(r rune) bool {
	r = unicode.ToLower(r)
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'k' && r <= 'o') || r == 'r'
}

func parseSegments(s string) []Segment {
	var (
		out []Segment
		cur Segment
		buf strings.Builder
	)
	flush := func() {
		if buf.Len() == 0 {
			return
		}
		cur.Text = buf.String()
		buf.Reset()
		if n := len(out); n > 0 && out[n-1].sameStyle(cur) {
			out[n-1].Text += cur.Text
		} else {
			out = append(out, cur)
		}
		cur.Text = ""
	}

	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		if isMarker(rs[i]) && i+1 < len(rs) && isCode(rs[i+1]) {
			flush()
			code := unicode.ToLower(rs[i+1])
			switch {
			case code == 'r':
				cur = Segment{}
			case code >= 'k' && code <= 'o':
				switch code {
				case 'k':
					cur.Obfuscated = true
				case 'l':
					cur.Bold = true
				case 'm':
					cur.Strikethrough = true
				case 'n':
					cur.Underline = true
				case 'o':
					cur.Italic = true
				}
			default:
				// A color resets decorations.
				cur = Segment{Color: code}
			}
			i++
			continue
		}
		buf.WriteRune(rs[i])
	}
	flush()
	return out
}

func stripCodes(s string) string {
	rs := []rune(s)
	var b strings.Builder
	for i := 0; i < len(rs); i++ {
		if isMarker(rs[i]) && i+1 < len(rs) && isCode(rs[i+1]) {
			i++
			continue
		}
		b.WriteRune(rs[i])
	}
	return b.String()
}
