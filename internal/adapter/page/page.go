package page

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	LoadingID     = "loading"
	ProductListID = "product-list"

	hiddenClass = "hidden"
)

var _ port.Page = (*Document)(nil)

//go:embed index.html
var indexHTML []byte

// A Document is the storefront page as a node tree. Product fields only
// ever become text nodes or attribute values, both escaped on Render.
type Document struct {
	root    *html.Node
	loading *html.Node
	list    *html.Node
}

func NewDocument() (*Document, error) {
	return ParseDocument(bytes.NewReader(indexHTML))
}

// ParseDocument reads a page that has elements with ids [LoadingID] and
// [ProductListID].
func ParseDocument(r io.Reader) (*Document, error) {
	const op = "page.ParseDocument"

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	d := &Document{
		root:    root,
		loading: FindByID(root, LoadingID),
		list:    FindByID(root, ProductListID),
	}
	if d.loading == nil {
		return nil, fmt.Errorf("%s: element #%s not found", op, LoadingID)
	}
	if d.list == nil {
		return nil, fmt.Errorf("%s: element #%s not found", op, ProductListID)
	}
	return d, nil
}

// NewPage adapts [NewDocument] to [port.PageFactory].
func NewPage() (port.Page, error) {
	return NewDocument()
}

func (d *Document) ShowLoading() {
	setClasses(d.loading, slices.DeleteFunc(classes(d.loading),
		func(c string) bool { return c == hiddenClass },
	))
}

func (d *Document) HideLoading() {
	cs := classes(d.loading)
	if !slices.Contains(cs, hiddenClass) {
		setClasses(d.loading, append(cs, hiddenClass))
	}
}

func (d *Document) LoadingVisible() bool {
	return !slices.Contains(classes(d.loading), hiddenClass)
}

func (d *Document) Clear() {
	for c := d.list.FirstChild; c != nil; {
		next := c.NextSibling
		d.list.RemoveChild(c)
		c = next
	}
}

func (d *Document) Append(c domain.Card) {
	d.list.AppendChild(cardNode(c))
}

func (d *Document) ShowError(msg string) {
	d.Clear()
	p := element(atom.P, attr("class", "error-message"))
	p.AppendChild(text(msg))
	d.list.AppendChild(p)
}

// ProductList returns the product list element.
func (d *Document) ProductList() *html.Node {
	return d.list
}

func (d *Document) Render(w io.Writer) error {
	const op = "Document.Render"
	if err := html.Render(w, d.root); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func cardNode(c domain.Card) *html.Node {
	article := element(atom.Article, attr("class", "product-card"))

	article.AppendChild(element(atom.Img,
		attr("src", c.Image),
		attr("alt", c.Title),
	))

	h3 := element(atom.H3)
	h3.AppendChild(text(c.Title))
	article.AppendChild(h3)

	price := element(atom.P, attr("class", "price"))
	price.AppendChild(text(c.Price))
	article.AppendChild(price)

	desc := element(atom.P, attr("class", "description"))
	desc.AppendChild(text(c.Description))
	article.AppendChild(desc)

	button := element(atom.Button, attr("type", "button"))
	button.AppendChild(text(c.Action))
	article.AppendChild(button)

	return article
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// FindByID returns the first element under n with the given id.
func FindByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attrValue(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func classes(n *html.Node) []string {
	return strings.Fields(attrValue(n, "class"))
}

func setClasses(n *html.Node, cs []string) {
	v := strings.Join(cs, " ")
	for i := range n.Attr {
		if n.Attr[i].Key == "class" {
			n.Attr[i].Val = v
			return
		}
	}
	n.Attr = append(n.Attr, attr("class", v))
}
