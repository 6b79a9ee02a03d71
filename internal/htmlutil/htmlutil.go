package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText strips non-printable characters, trims and collapses inner whitespace.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.TrimSpace(s)
	s = innerWhitespace.ReplaceAllString(s, " ")
	return s
}

// Text returns the cleaned text of all nodes in a selection.
func Text(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	var buffer bytes.Buffer
	for i, n := range sel.Nodes {
		if i > 0 {
			buffer.WriteByte(' ')
		}
		getTextRecursive(n, &buffer)
	}
	return CleanText(buffer.String())
}

// FirstOf tries each selector in order within root and returns the first
// element matched by the earliest selector that matches anything.
func FirstOf(root *goquery.Selection, selectors []string) *goquery.Selection {
	for _, selector := range selectors {
		found := root.Find(selector)
		if found.Length() > 0 {
			return found.First()
		}
	}
	return nil
}

// AllOf returns every element in root matching any of the selectors, in
// document order.
func AllOf(root *goquery.Selection, selectors []string) *goquery.Selection {
	if len(selectors) == 0 {
		return root.Find("nonexistent-element-selector")
	}
	return root.Find(strings.Join(selectors, ", "))
}

// Texts returns the cleaned text of every element in the selection.
func Texts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, Text(s))
	})
	return out
}
