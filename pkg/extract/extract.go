package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"webdl/pkg/errors"
)

// tagForKind maps the user-facing element kinds onto markup tag names.
// Kinds not listed here are used verbatim as tag names, so arbitrary
// tags can be extracted without touching this table.
var tagForKind = map[string]string{
	"image": "img",
	"audio": "audio",
	"video": "video",
}

// TagFor returns the markup tag name for an element kind.
func TagFor(kind string) string {
	if tag, ok := tagForKind[kind]; ok {
		return tag
	}
	return kind
}

// URLs parses the page markup and returns the absolute URLs of every
// element of the requested kind carrying a src attribute, in document
// order. Relative references are resolved against the page URL.
// Duplicates are kept; the storage layer resolves name collisions.
func URLs(body []byte, pageURL *url.URL, kind string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.New(errors.ErrorTypeParsing,
			fmt.Sprintf("failed to parse page markup: %v", err))
	}

	selector := fmt.Sprintf("%s[src]", TagFor(kind))

	var urls []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" {
			return
		}
		ref, err := url.Parse(src)
		if err != nil {
			return
		}
		urls = append(urls, pageURL.ResolveReference(ref).String())
	})

	return urls, nil
}
