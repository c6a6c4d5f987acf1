package checks

import (
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// parseHTMLFile parses a built page.
func parseHTMLFile(path string) (*html.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("page %s: missing", path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML %s: %w", path, err)
	}
	return doc, nil
}

// loadDocument parses a built page for selector queries.
func loadDocument(path string) (*goquery.Document, error) {
	node, err := parseHTMLFile(path)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(node), nil
}

// collectIDs returns every element id in the tree that starts with prefix.
func collectIDs(n *html.Node, prefix string, into map[string]bool) {
	if n.Type == html.ElementNode {
		for _, attr := range n.Attr {
			if attr.Key == "id" && strings.HasPrefix(attr.Val, prefix) {
				into[attr.Val] = true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectIDs(c, prefix, into)
	}
}
