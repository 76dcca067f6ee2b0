package ontology

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the on-disk encoding of the tree and its artifacts.
type Format uint8

const (
	FormatXML Format = iota
	FormatJSON
	FormatMsgpack
)

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xml":
		return FormatXML, nil
	case "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	}
	return FormatXML, fmt.Errorf("unknown output format %q (expected: xml|json|msgpack)", s)
}

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "xml"
	}
}

// Ext is the file extension used for artifacts in this format.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatMsgpack:
		return ".mp"
	default:
		return ".xml"
	}
}

// Encode writes v (a *Container or *Artifact) to w.
func Encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(v)
	default:
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(v); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}
}

// DecodeContainer reads a tree written by Encode. Parent links are rebuilt.
func DecodeContainer(r io.Reader, format Format) (*Container, error) {
	var c Container
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&c)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&c)
	default:
		err = xml.NewDecoder(r).Decode(&c)
	}
	if err != nil {
		return nil, err
	}
	c.relink()
	return &c, nil
}

func (c *Container) relink() {
	var walk func(parent *Folder, fs []*Folder)
	walk = func(parent *Folder, fs []*Folder) {
		for _, f := range fs {
			f.parent = parent
			f.container = c
			walk(f, f.Folders)
		}
	}
	walk(nil, c.Folders)
}
