// Package parser extracts frontmatter, wikilinks, and tags from Markdown content.
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/topicscout/internal/models"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	tagRe      = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// Frontmatter holds the frontmatter keys topicscout understands. Unknown keys
// are ignored.
type Frontmatter struct {
	Title string  `yaml:"title"`
	Tags  TagList `yaml:"tags"`
}

// TagList accepts either a YAML sequence or a comma-separated string.
type TagList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *TagList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*t = splitTags(strings.Split(s, ","))
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*t = splitTags(items)
	default:
		*t = nil
	}
	return nil
}

func splitTags(raw []string) []string {
	var out []string
	for _, s := range raw {
		s = strings.TrimPrefix(strings.TrimSpace(s), "#")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter *Frontmatter
	Body        string
	Links       []string
	Tags        []string
	Title       string
	WordCount   int
}

// Parse extracts frontmatter, body, wikilinks, and tags from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Links:       extractLinks(body),
		Tags:        extractTags(body, fm),
		Title:       deriveTitle(fm),
		WordCount:   models.CountWords(body),
	}, nil
}

// ParseNote parses data into a note record for the vault-relative path.
// The title falls back to the file stem when frontmatter has none.
func ParseNote(path string, data []byte) (*models.Note, error) {
	res, err := Parse(data)
	if err != nil {
		return nil, err
	}
	n := &models.Note{
		Path:      path,
		Title:     res.Title,
		Body:      res.Body,
		Tags:      nonNil(res.Tags),
		Links:     nonNil(res.Links),
		WordCount: res.WordCount,
	}
	if n.Title == "" {
		n.Title = stemTitle(path)
	}
	return n, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (*Frontmatter, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// Unterminated block is body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm Frontmatter
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML falls back to body only.
		return nil, string(data), nil
	}

	return &fm, body, nil
}

// extractLinks returns deduplicated wikilink targets with any |alias and
// #heading or #^block suffix removed. Same-note links ([[#Heading]]) are
// dropped.
func extractLinks(body string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(body, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target := m[1]
		if i := strings.IndexAny(target, "|#"); i >= 0 {
			target = target[:i]
		}
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// extractTags collects frontmatter tags followed by inline #tags, deduplicated
// case-insensitively. The first spelling wins.
func extractTags(body string, fm *Frontmatter) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}

	if fm != nil {
		for _, t := range fm.Tags {
			add(t)
		}
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

func deriveTitle(fm *Frontmatter) string {
	if fm == nil {
		return ""
	}
	return strings.TrimSpace(fm.Title)
}

func stemTitle(p string) string {
	base := p
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".md")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
