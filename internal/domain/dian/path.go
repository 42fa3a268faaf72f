package dian

import (
	"strings"

	"github.com/beevik/etree"

	pkgdian "github.com/va-app/va-dian/pkg/dian"
)

// Namespaces prefijo -> URI usados para resolver las rutas del extractor.
type Namespaces map[string]string

// DefaultNamespaces componentes agregados y básicos de UBL 2.1.
func DefaultNamespaces() Namespaces {
	return Namespaces{
		"cac": pkgdian.NamespaceCAC,
		"cbc": pkgdian.NamespaceCBC,
	}
}

type step struct {
	prefix string
	local  string
}

// path ruta relativa estilo ElementTree: "a:b/c:d" (hijos directos) o ".//a:b/c:d" (primer paso a cualquier profundidad).
type path struct {
	descendant bool
	steps      []step
}

func compilePath(p string) path {
	var out path
	if strings.HasPrefix(p, ".//") {
		out.descendant = true
		p = strings.TrimPrefix(p, ".//")
	}
	for _, s := range strings.Split(p, "/") {
		if s == "" {
			continue
		}
		st := step{local: s}
		if i := strings.IndexByte(s, ':'); i >= 0 {
			st.prefix, st.local = s[:i], s[i+1:]
		}
		out.steps = append(out.steps, st)
	}
	return out
}

func (ns Namespaces) matches(e *etree.Element, st step) bool {
	if e.Tag != st.local {
		return false
	}
	if st.prefix == "" {
		return e.NamespaceURI() == ""
	}
	uri, ok := ns[st.prefix]
	if !ok {
		return e.Space == st.prefix
	}
	if got := e.NamespaceURI(); got != "" {
		return got == uri
	}
	// prefijo sin declarar en el documento
	return e.Space == st.prefix
}

// findAll devuelve, en orden de documento, los elementos que cumplen la ruta a partir de root (excluido).
func (ns Namespaces) findAll(root *etree.Element, p path) []*etree.Element {
	if root == nil || len(p.steps) == 0 {
		return nil
	}
	var current []*etree.Element
	first := p.steps[0]
	if p.descendant {
		walkDescendants(root, func(e *etree.Element) {
			if ns.matches(e, first) {
				current = append(current, e)
			}
		})
	} else {
		for _, c := range root.ChildElements() {
			if ns.matches(c, first) {
				current = append(current, c)
			}
		}
	}
	for _, st := range p.steps[1:] {
		var next []*etree.Element
		for _, e := range current {
			for _, c := range e.ChildElements() {
				if ns.matches(c, st) {
					next = append(next, c)
				}
			}
		}
		current = next
	}
	return current
}

func (ns Namespaces) find(root *etree.Element, p path) *etree.Element {
	all := ns.findAll(root, p)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// findText texto recortado del primer elemento que cumple la ruta; "" si no existe.
func (ns Namespaces) findText(root *etree.Element, p path) string {
	return elementText(ns.find(root, p))
}

func walkDescendants(e *etree.Element, fn func(*etree.Element)) {
	for _, c := range e.ChildElements() {
		fn(c)
		walkDescendants(c, fn)
	}
}

// elementText concatena el texto (incluido CDATA) que precede al primer hijo elemento.
func elementText(e *etree.Element) string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	for _, t := range e.Child {
		switch v := t.(type) {
		case *etree.CharData:
			b.WriteString(v.Data)
		case *etree.Comment, *etree.ProcInst:
		default:
			return strings.TrimSpace(b.String())
		}
	}
	return strings.TrimSpace(b.String())
}
