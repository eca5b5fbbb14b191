package markup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedKind = errors.New("unsupported file kind")
	ErrParse           = errors.New("markup parse failed")
)

// Kind selects the backend used for a file.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindHypertext is a plain hypertext document.
	KindHypertext
	// KindTemplate is a component module with embedded template markup.
	KindTemplate
)

func (k Kind) String() string {
	switch k {
	case KindHypertext:
		return "hypertext"
	case KindTemplate:
		return "template"
	}
	return "unknown"
}

var kindsByExtension = map[string]Kind{
	".html": KindHypertext,
	".htm":  KindHypertext,
	".jsx":  KindTemplate,
	".tsx":  KindTemplate,
	".js":   KindTemplate,
	".mjs":  KindTemplate,
}

// KindFromPath returns the file kind for a path based on its extension.
func KindFromPath(path string) Kind {
	return kindsByExtension[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions lists every extension that maps to a backend.
func SupportedExtensions() []string {
	return []string{".html", ".htm", ".jsx", ".tsx", ".js", ".mjs"}
}

// Backend turns source text of one file kind into unified elements.
type Backend interface {
	Elements(ctx context.Context, source []byte) ([]*Element, error)
}

// BackendFor returns the backend that handles the given kind.
func BackendFor(kind Kind) (Backend, error) {
	switch kind {
	case KindHypertext:
		return hypertextBackend{}, nil
	case KindTemplate:
		return templateBackend{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
}
