package document

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dgnsrekt/documentarian/internal/oembed"
	"gopkg.in/yaml.v3"
)

// Document is a finished summary together with what it was made from.
type Document struct {
	URL       string
	Metadata  *oembed.VideoMetadata
	Summary   string
	Sources   []string
	Generated time.Time
}

type frontMatter struct {
	Title     string    `yaml:"title,omitempty"`
	Author    string    `yaml:"author,omitempty"`
	Thumbnail string    `yaml:"thumbnail,omitempty"`
	URL       string    `yaml:"url,omitempty"`
	Generated time.Time `yaml:"generated"`
	Sources   []string  `yaml:"sources,omitempty"`
}

// Export writes d as markdown with a YAML front matter block.
func (d Document) Export(w io.Writer) error {
	fm := frontMatter{
		URL:       d.URL,
		Generated: d.Generated.UTC().Truncate(time.Second),
		Sources:   d.Sources,
	}
	if d.Metadata != nil {
		fm.Title = d.Metadata.Title
		fm.Author = d.Metadata.AuthorName
		fm.Thumbnail = d.Metadata.ThumbnailURL
	}

	head, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("unable to encode front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(d.Summary))
	b.WriteString("\n")
	if len(d.Sources) > 0 {
		b.WriteString("\n## Sources\n\n")
		for _, s := range d.Sources {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}
	return nil
}

// ParseFrontMatter splits an exported document into its front matter and body.
// Content without front matter is returned as the body.
func ParseFrontMatter(content []byte) (Document, string, error) {
	s := string(content)
	if !strings.HasPrefix(s, "---\n") {
		return Document{}, s, nil
	}
	end := strings.Index(s[4:], "\n---")
	if end < 0 {
		return Document{}, s, nil
	}

	var fm frontMatter
	if err := yaml.Unmarshal([]byte(s[4:4+end]), &fm); err != nil {
		return Document{}, "", fmt.Errorf("unable to decode front matter: %w", err)
	}

	body := strings.TrimLeft(s[4+end+len("\n---"):], "\n")
	doc := Document{
		URL:       fm.URL,
		Sources:   fm.Sources,
		Generated: fm.Generated,
	}
	if fm.Title != "" {
		doc.Metadata = &oembed.VideoMetadata{Title: fm.Title, AuthorName: fm.Author, ThumbnailURL: fm.Thumbnail}
	}
	return doc, body, nil
}
