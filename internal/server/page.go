package server

import (
	"bytes"
	_ "embed"
	"os"

	"golang.org/x/net/html"
)

//go:embed ide.html
var embeddedPage []byte

// loadPage returns the instructions page, preferring the file at path when
// it can be read. The file is re-read on every call so edits show up
// without a restart.
func loadPage(path string) []byte {
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return data
		}
	}
	return embeddedPage
}

// renderPage sets the text of elements whose id is a key of fields. Pages
// that fail to parse are returned unchanged.
func renderPage(page []byte, fields map[string]string) []byte {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return page
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key != "id" {
					continue
				}
				if text, ok := fields[a.Val]; ok {
					for c := n.FirstChild; c != nil; {
						next := c.NextSibling
						n.RemoveChild(c)
						c = next
					}
					n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return page
	}
	return buf.Bytes()
}
