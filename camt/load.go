package camt

import (
	"bytes"

	"github.com/beevik/etree"
	"github.com/rs/zerolog/log"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load parses raw statement bytes into an XML tree.
// source is only used to label errors and log lines.
func Load(data []byte, source string) (*etree.Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &DocumentError{Source: source, Err: ErrEmptyDocument}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &DocumentError{Source: source, Err: err}
	}
	if doc.Root() == nil {
		return nil, &DocumentError{Source: source, Err: ErrNoRoot}
	}

	log.Debug().
		Str("Source", source).
		Int("Bytes", len(data)).
		Str("Root", doc.Root().Tag).
		Str("Namespace", doc.Root().NamespaceURI()).
		Msg("Loaded CAMT document")
	return doc, nil
}
