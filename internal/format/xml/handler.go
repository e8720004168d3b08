// Package xml provides the XML format handler.
//
// XML has no native notion of sequences or typed scalars, so the mapping is
// structural:
//
//   - a mapping becomes child elements named after its keys
//   - a sequence becomes repeated <item> children
//   - a scalar becomes text content (nil becomes empty text)
//
// Loading reverses this by sampling cardinality: repeated sibling tags
// become a sequence, a single occurrence stays a scalar or mapping. A
// one-element sequence therefore loads back as its only element, and every
// leaf loads back as a string.
package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/thirteen37/confio/internal/format"
)

// DefaultRootTag wraps mappings that have more than one top-level key.
const DefaultRootTag = "root"

// ItemTag is the element name used for sequence entries.
const ItemTag = "item"

const header = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

// Handler implements format.Handler for XML files.
type Handler struct {
	// RootTag names the document element when the saved mapping has
	// zero or several top-level keys.
	RootTag string
}

// New creates a new XML handler using DefaultRootTag.
func New() *Handler {
	return &Handler{RootTag: DefaultRootTag}
}

// NewWithRootTag creates a new XML handler with a custom root tag.
func NewWithRootTag(rootTag string) *Handler {
	return &Handler{RootTag: rootTag}
}

func (h *Handler) rootTag() string {
	if h.RootTag == "" {
		return DefaultRootTag
	}
	return h.RootTag
}

// Load reads an XML file. The result is {rootTag: content}, unless the
// root tag is the handler's RootTag and the content is a mapping with two
// or more keys, which is how Save writes multi-key mappings.
func (h *Handler) Load(path string) (any, error) {
	data, err := format.ReadFile(path)
	if err != nil {
		return nil, err
	}

	tree, err := h.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// Save writes a mapping as XML. A single-key mapping uses its key as the
// document element; any other mapping is wrapped in RootTag.
func (h *Handler) Save(value any, path string, opts format.SaveOptions) error {
	data, err := h.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return format.WriteFile(path, data, opts)
}

// Marshal encodes a mapping as an indented XML document.
func (h *Handler) Marshal(value any) ([]byte, error) {
	tree, err := format.Normalize(value)
	if err != nil {
		return nil, err
	}
	om := format.ToOrderedMapPtr(tree)
	if om == nil {
		return nil, fmt.Errorf("%w: XML document must be a mapping, got %s", format.ErrSerialize, format.ShapeOf(tree))
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")

	if keys := om.Keys(); len(keys) == 1 {
		content, _ := om.Get(keys[0])
		err = writeElement(encoder, keys[0], content)
	} else {
		err = writeElement(encoder, h.rootTag(), om)
	}
	if err != nil {
		return nil, err
	}

	if err := encoder.Flush(); err != nil {
		return nil, fmt.Errorf("%w: failed to serialize XML: %w", format.ErrSerialize, err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeElement(encoder *xml.Encoder, tag string, value any) error {
	if !isValidName(tag) {
		return fmt.Errorf("%w: %q is not a valid XML element name", format.ErrSerialize, tag)
	}

	start := xml.StartElement{Name: xml.Name{Local: tag}}
	if err := encoder.EncodeToken(start); err != nil {
		return fmt.Errorf("%w: failed to serialize XML: %w", format.ErrSerialize, err)
	}

	if om := format.ToOrderedMapPtr(value); om != nil {
		for _, k := range om.Keys() {
			child, _ := om.Get(k)
			if err := writeElement(encoder, k, child); err != nil {
				return err
			}
		}
	} else if items, ok := value.([]any); ok {
		for _, item := range items {
			if err := writeElement(encoder, ItemTag, item); err != nil {
				return err
			}
		}
	} else if text := scalarText(value); text != "" {
		if err := encoder.EncodeToken(xml.CharData(text)); err != nil {
			return fmt.Errorf("%w: failed to serialize XML: %w", format.ErrSerialize, err)
		}
	}

	if err := encoder.EncodeToken(start.End()); err != nil {
		return fmt.Errorf("%w: failed to serialize XML: %w", format.ErrSerialize, err)
	}
	return nil
}

// scalarText renders a scalar as element text.
func scalarText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(val)
	}
}

// isValidName reports whether s can be used as an unprefixed element name.
func isValidName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_':
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// node is a parsed element before conversion to a value tree.
type node struct {
	tag      string
	text     strings.Builder
	children []*node
}

// Unmarshal decodes an XML document into a generic value tree.
func (h *Handler) Unmarshal(data []byte) (any, error) {
	root, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse XML: %w", format.ErrParse, err)
	}

	content := toValue(root)
	if om := format.ToOrderedMapPtr(content); om != nil && root.tag == h.rootTag() && len(om.Keys()) >= 2 {
		return om, nil
	}

	result := format.NewMap()
	result.Set(root.tag, content)
	return result, nil
}

func parse(data []byte) (*node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var root *node
	var stack []*node
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			n := &node{tag: tok.Name.Local}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root != nil {
				return nil, errors.New("multiple root elements")
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(tok)
			}
		}
	}

	if root == nil {
		return nil, errors.New("no root element")
	}
	return root, nil
}

// toValue converts an element's content: text for leaves, a sequence for
// <item> children, a mapping otherwise.
func toValue(n *node) any {
	if len(n.children) == 0 {
		return n.text.String()
	}

	if allItems(n.children) {
		if len(n.children) == 1 {
			return toValue(n.children[0])
		}
		items := make([]any, len(n.children))
		for i, child := range n.children {
			items[i] = toValue(child)
		}
		return items
	}

	// Group by tag, keeping first-occurrence order.
	var order []string
	groups := make(map[string][]any)
	for _, child := range n.children {
		if _, ok := groups[child.tag]; !ok {
			order = append(order, child.tag)
		}
		groups[child.tag] = append(groups[child.tag], toValue(child))
	}

	result := format.NewMap()
	for _, tag := range order {
		values := groups[tag]
		if len(values) == 1 {
			result.Set(tag, values[0])
		} else {
			result.Set(tag, values)
		}
	}
	return result
}

func allItems(children []*node) bool {
	for _, child := range children {
		if child.tag != ItemTag {
			return false
		}
	}
	return true
}

// Ensure Handler implements format.Handler.
var _ format.Handler = (*Handler)(nil)
