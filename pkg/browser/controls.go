package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Control is one interactive element found in a page snapshot.
type Control struct {
	Tag   string
	Type  string
	Text  string
	Value string
	Name  string
	ID    string
}

// Label is what an operator would read on the control.
func (c Control) Label() string {
	if c.Tag == "input" && c.Value != "" {
		return c.Value
	}
	if c.Text != "" {
		return c.Text
	}
	return c.Value
}

func (c Control) String() string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(c.Tag)
	if c.Type != "" {
		fmt.Fprintf(&b, " type=%s", c.Type)
	}
	if c.ID != "" {
		fmt.Fprintf(&b, " id=%s", c.ID)
	} else if c.Name != "" {
		fmt.Fprintf(&b, " name=%s", c.Name)
	}
	b.WriteString(">")
	if label := c.Label(); label != "" {
		fmt.Fprintf(&b, " %q", label)
	}
	return b.String()
}

// ParseControls lists the buttons, links, inputs and selects in rawHTML in
// document order. Hidden inputs and anything inside script or style
// elements are left out. It is used to explain failures, where the page
// rarely looks the way the workflow expected.
func ParseControls(rawHTML string) ([]Control, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var controls []Control
	collectControls(doc, &controls)
	return controls, nil
}

func collectControls(n *html.Node, out *[]Control) {
	if n.Type == html.ElementNode {
		tag := strings.ToLower(n.Data)
		if isSkippedElement(tag) {
			return
		}
		if isControlElement(tag) {
			c := Control{
				Tag:   tag,
				Type:  strings.ToLower(attr(n, "type")),
				Value: strings.TrimSpace(attr(n, "value")),
				Name:  attr(n, "name"),
				ID:    attr(n, "id"),
			}
			if tag != "input" {
				c.Text = collapseSpace(textOf(n))
			}
			if !(tag == "input" && c.Type == "hidden") {
				*out = append(*out, c)
			}
			if tag == "select" {
				return
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectControls(c, out)
	}
}

// SummarizeControls renders at most limit controls, one per line.
func SummarizeControls(controls []Control, limit int) string {
	var b strings.Builder
	for i, c := range controls {
		if limit > 0 && i >= limit {
			fmt.Fprintf(&b, "... %d more", len(controls)-limit)
			break
		}
		b.WriteString(c.String())
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func isSkippedElement(tag string) bool {
	switch tag {
	case "script", "style", "noscript", "template", "svg":
		return true
	}
	return false
}

func isControlElement(tag string) bool {
	switch tag {
	case "a", "button", "input", "select", "textarea":
		return true
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
			return
		}
		if n.Type == html.ElementNode && isSkippedElement(strings.ToLower(n.Data)) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
