package report

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// DefaultSelector is where the leaderboard fragment is injected in a site page.
const DefaultSelector = "#leaderboard"

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTMLFragment converts markdown into an HTML fragment.
func HTMLFragment(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// InjectHTML replaces the inner HTML of the element matched by selector.
func InjectHTML(page, selector, fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return "", fmt.Errorf("selector %q matched nothing", selector)
	}
	sel.First().SetHtml(fragment)
	out, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return out, nil
}

// InjectFile rewrites the site page at path in place.
func InjectFile(path, selector, fragment string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}
	out, err := InjectHTML(string(data), selector, fragment)
	if err != nil {
		return fmt.Errorf("inject %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(out), info.Mode().Perm())
}
