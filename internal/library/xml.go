package library

import (
	"bytes"
	"encoding/xml"
	"time"
)

type xmlKeyword struct {
	Name      string   `xml:"name,attr"`
	Lineno    int      `xml:"lineno,attr"`
	Arguments []string `xml:"arguments>arg"`
	Doc       string   `xml:"doc"`
	Tags      []string `xml:"tags>tag,omitempty"`
}

type xmlSpec struct {
	XMLName   xml.Name     `xml:"keywordspec"`
	Name      string       `xml:"name,attr"`
	Type      string       `xml:"type,attr"`
	Format    string       `xml:"format,attr"`
	Source    string       `xml:"source,attr,omitempty"`
	Lineno    int          `xml:"lineno,attr"`
	Generated string       `xml:"generated,attr"`
	Version   string       `xml:"version"`
	Scope     string       `xml:"scope"`
	Doc       string       `xml:"doc"`
	Inits     []xmlKeyword `xml:"inits>init"`
	Keywords  []xmlKeyword `xml:"keywords>kw"`
}

// ToXML serializes the library model as a keyword spec document.
func (d *Doc) ToXML() ([]byte, error) {
	spec := xmlSpec{
		Name:      d.Name,
		Type:      d.Type,
		Format:    d.DocFormat,
		Source:    d.Source,
		Lineno:    d.Lineno,
		Generated: time.Now().UTC().Format("2006-01-02 15:04:05"),
		Version:   d.Version,
		Scope:     d.Scope,
		Doc:       d.DocWithTOC(),
		Inits:     xmlKeywords(d.Inits),
		Keywords:  xmlKeywords(d.Keywords),
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(spec); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xmlKeywords(kws []*Keyword) []xmlKeyword {
	out := make([]xmlKeyword, 0, len(kws))
	for _, kw := range kws {
		out = append(out, xmlKeyword{
			Name:      kw.Name,
			Lineno:    kw.Lineno,
			Arguments: kw.ArgsRepr(),
			Doc:       kw.Doc,
			Tags:      kw.Tags,
		})
	}
	return out
}
