package library

import (
	"encoding/json"
	"time"
)

// The JSON layout mirrors the structure consumed by downstream doc viewers,
// one object per library with fully expanded keywords.

type jsonArg struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Default  string `json:"default"`
	Kind     string `json:"kind"`
	Required bool   `json:"required"`
	Repr     string `json:"repr"`
}

type jsonKeyword struct {
	Name     string    `json:"name"`
	Args     []jsonArg `json:"args"`
	Doc      string    `json:"doc"`
	ShortDoc string    `json:"shortdoc"`
	Tags     []string  `json:"tags"`
	Source   string    `json:"source"`
	Lineno   int       `json:"lineno"`
}

type jsonLibrary struct {
	Name      string        `json:"name"`
	Doc       string        `json:"doc"`
	Version   string        `json:"version"`
	Type      string        `json:"type"`
	Scope     string        `json:"scope"`
	DocFormat string        `json:"doc_format"`
	Source    string        `json:"source"`
	Lineno    int           `json:"lineno"`
	Inits     []jsonKeyword `json:"inits"`
	Keywords  []jsonKeyword `json:"keywords"`
	Generated string        `json:"generated"`
	AllTags   []string      `json:"all_tags"`
}

// ToJSON serializes the library model. The library doc carries the
// synthesized TOC.
func (d *Doc) ToJSON(indent bool) ([]byte, error) {
	lib := jsonLibrary{
		Name:      d.Name,
		Doc:       d.DocWithTOC(),
		Version:   d.Version,
		Type:      d.Type,
		Scope:     d.Scope,
		DocFormat: d.DocFormat,
		Source:    d.Source,
		Lineno:    d.Lineno,
		Inits:     jsonKeywords(d.Inits),
		Keywords:  jsonKeywords(d.Keywords),
		Generated: time.Now().UTC().Format("2006-01-02 15:04:05"),
		AllTags:   emptyIfNil(d.AllTags()),
	}
	if indent {
		return json.MarshalIndent(lib, "", "  ")
	}
	return json.Marshal(lib)
}

func jsonKeywords(kws []*Keyword) []jsonKeyword {
	out := make([]jsonKeyword, 0, len(kws))
	for _, kw := range kws {
		args := make([]jsonArg, 0, len(kw.Args))
		for _, arg := range kw.Args {
			args = append(args, jsonArg{
				Name:     arg.Name,
				Type:     arg.Type,
				Default:  arg.Default,
				Kind:     string(arg.Kind),
				Required: arg.Required(),
				Repr:     arg.String(),
			})
		}
		out = append(out, jsonKeyword{
			Name:     kw.Name,
			Args:     args,
			Doc:      kw.Doc,
			ShortDoc: kw.ShortDoc(),
			Tags:     emptyIfNil(kw.Tags),
			Source:   kw.Source,
			Lineno:   kw.Lineno,
		})
	}
	return out
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
