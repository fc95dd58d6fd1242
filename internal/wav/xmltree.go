package wav

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// xmlNode is a minimal, order-preserving XML element tree. encoding/xml's
// struct-tag marshaling can't express "preserve every sibling I don't know
// about, in document order, and append new ones at the end" — so the iXML
// codec walks its own tree instead.
type xmlNode struct {
	Tag      string
	Attrs    []xml.Attr
	Text     string
	Children []*xmlNode
}

func parseXMLTree(data []byte) (*xmlNode, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var stack []*xmlNode
	var root *xmlNode
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := &xmlNode{Tag: t.Name.Local, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			} else {
				root = node
			}
			stack = append(stack, node)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	return root, nil
}

func findChild(n *xmlNode, tag string) *xmlNode {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ensureChild returns the existing child named tag, or appends and returns
// a new one, preserving the order of every other sibling.
func ensureChild(n *xmlNode, tag string) *xmlNode {
	if c := findChild(n, tag); c != nil {
		return c
	}
	c := &xmlNode{Tag: tag}
	n.Children = append(n.Children, c)
	return c
}

func getText(n *xmlNode, tag string) (string, bool) {
	c := findChild(n, tag)
	if c == nil {
		return "", false
	}
	return c.Text, true
}

func setText(n *xmlNode, tag, value string) {
	ensureChild(n, tag).Text = value
}

func serializeXMLTree(root *xmlNode) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	writeNode(&buf, root)
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, n *xmlNode) {
	buf.WriteByte('<')
	buf.WriteString(n.Tag)
	for _, a := range n.Attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name.Local)
		buf.WriteString(`="`)
		xml.EscapeText(buf, []byte(a.Value))
		buf.WriteByte('"')
	}
	if len(n.Children) == 0 && n.Text == "" {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	if n.Text != "" {
		xml.EscapeText(buf, []byte(n.Text))
	}
	for _, c := range n.Children {
		writeNode(buf, c)
	}
	buf.WriteString("</")
	buf.WriteString(n.Tag)
	buf.WriteByte('>')
}
