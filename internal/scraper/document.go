package scraper

import (
	"io"

	"github.com/PuerkitoBio/goquery"
)

// Document is a parsed HTML page. Lookups return explicit not-found results
// instead of empty selections so callers must handle absence.
type Document struct {
	root Node
}

// Node is a single element of a Document.
type Node struct {
	sel *goquery.Selection
}

// ParseDocument builds a Document from r. Malformed markup is repaired by the
// HTML5 parsing algorithm, so only read errors are returned.
func ParseDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{root: Node{sel: doc.Selection}}, nil
}

// FindFirst returns the first element in document order matching selector.
func (d *Document) FindFirst(selector string) (Node, bool) {
	return d.root.FindFirst(selector)
}

// FindAll returns every element matching selector, in document order.
func (d *Document) FindAll(selector string) []Node {
	return d.root.FindAll(selector)
}

// FindFirst returns the first descendant of n matching selector.
func (n Node) FindFirst(selector string) (Node, bool) {
	found := n.sel.Find(selector).First()
	if found.Length() == 0 {
		return Node{}, false
	}
	return Node{sel: found}, true
}

// FindAll returns the descendants of n matching selector.
func (n Node) FindAll(selector string) []Node {
	found := n.sel.Find(selector)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, Node{sel: s})
	})
	return nodes
}

// Text returns the combined text of n and its descendants.
func (n Node) Text() string {
	if n.sel == nil {
		return ""
	}
	return n.sel.Text()
}

// Attr returns the value of the named attribute.
func (n Node) Attr(name string) (string, bool) {
	if n.sel == nil {
		return "", false
	}
	return n.sel.Attr(name)
}
