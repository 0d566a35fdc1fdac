// Package document splits a generated summary into read-aloud segments,
// extracts speakable text from markdown, and exports summaries to disk.
package document

import (
	"net/url"
	"strings"
)

// Kind is the visual role of a segment.
type Kind int

const (
	KindParagraph Kind = iota
	KindTitle
	KindSection
	KindBullet
)

func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindTitle:
		return "title"
	case KindSection:
		return "section"
	case KindBullet:
		return "bullet"
	default:
		return "unknown"
	}
}

// Segment is one non-empty line of a summary, the unit of read-aloud.
type Segment struct {
	Index int
	Kind  Kind
	Raw   string // the line as generated
	Text  string // the line without its block marker
}

// Chinese reports whether the segment contains CJK unified ideographs.
func (s Segment) Chinese() bool {
	for _, r := range s.Raw {
		if r >= '一' && r <= '龥' {
			return true
		}
	}
	return false
}

// Record reports whether the segment is the "Detailed Content Record"
// section heading.
func (s Segment) Record() bool {
	return s.Kind == KindSection &&
		(strings.Contains(s.Text, "Detailed Content Record") || strings.Contains(s.Text, "详细内容实录"))
}

// Segments splits summary into its non-empty lines.
func Segments(summary string) []Segment {
	var segs []Segment
	for _, line := range strings.Split(summary, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		seg := Segment{Index: len(segs), Raw: line, Text: line}
		switch {
		case strings.HasPrefix(line, "## "):
			seg.Kind, seg.Text = KindSection, line[3:]
		case strings.HasPrefix(line, "# "):
			seg.Kind, seg.Text = KindTitle, line[2:]
		case strings.HasPrefix(line, "* "), strings.HasPrefix(line, "- "):
			seg.Kind, seg.Text = KindBullet, line[2:]
		}
		segs = append(segs, seg)
	}
	return segs
}

// Host returns the host name of a source link without a leading "www.".
// Sources that are not links are returned unchanged.
func Host(source string) string {
	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return source
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
