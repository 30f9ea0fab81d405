// Package source reads document text from disk for the CLI.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/cognicore/lexsum/pkg/lexsum"
)

// Open returns the TextSource for path, chosen by extension.
func Open(path string) lexsum.TextSource {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return HTML{Path: path}
	default:
		return File{Path: path}
	}
}

// File reads a UTF-8 text file, typically the output of an extraction step.
type File struct {
	Path string
}

// Text implements lexsum.TextSource.
func (f File) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Path, err)
	}
	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), "�"), nil
	}
	return string(data), nil
}

// HTML reads an HTML document and keeps its visible text, one block per line.
type HTML struct {
	Path string
}

// Text implements lexsum.TextSource.
func (h HTML) Text(ctx context.Context) (string, error) {
	raw, err := File{Path: h.Path}.Text(ctx)
	if err != nil {
		return "", err
	}
	return ExtractHTML(raw)
}

var spaceRun = regexp.MustCompile(`\s+`)

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "title": true,
}

// ExtractHTML returns the visible text of an HTML document. Block elements
// end a line so that headings stay on lines of their own.
func ExtractHTML(s string) (string, error) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(spaceRun.ReplaceAllString(n.Data, " "))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			buf.WriteString("\n")
		}
	}
	extractText(doc)

	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
