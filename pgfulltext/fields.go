package pgfulltext

import (
	"github.com/nonibytes/pgfulltext/pgfulltext/fulltext"
	"github.com/nonibytes/pgfulltext/pgfulltext/inflection"
)

// FieldInfo describes one discovered full-text field and the schema
// elements generated for it.
type FieldInfo struct {
	Table      string `json:"table"`
	Type       string `json:"type"`
	Field      string `json:"field"`
	Source     string `json:"source"`
	Kind       string `json:"kind"`
	RankField  string `json:"rankField,omitempty"`
	AscValue   string `json:"ascValue,omitempty"`
	DescValue  string `json:"descValue,omitempty"`
	Filterable bool   `json:"filterable"`
	Orderable  bool   `json:"orderable"`
}

// FullTextFields lists the full-text fields of every exposed table in
// catalog order.
func (s *Service) FullTextFields() ([]FieldInfo, error) {
	r := s.schema.Introspection
	infl := inflection.New()
	var out []FieldInfo
	for _, c := range r.Classes {
		obj, ok := s.schema.ObjectForClass(c.ID)
		if !ok {
			continue
		}
		fields, err := fulltext.Discover(r, infl, c)
		if err != nil {
			return nil, Wrap(ErrSchema, "discover "+c.Name, err)
		}
		for _, f := range fields {
			info := FieldInfo{
				Table:      c.Name,
				Type:       obj.Name,
				Field:      f.BaseName,
				Kind:       string(f.Kind),
				Filterable: f.Filterable,
				Orderable:  f.Orderable,
			}
			if f.Attribute != nil {
				info.Source = f.Attribute.Name
			} else {
				info.Source = f.Procedure.Name
			}
			if f.Filterable {
				info.RankField = f.RankName
			}
			if f.Orderable {
				info.AscValue, info.DescValue = f.AscName, f.DescName
			}
			out = append(out, info)
		}
	}
	return out, nil
}
