package main

import (
	"encoding/base64"

	"github.com/seedwing-io/dogma-engine/internal/dogma/rationale"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
)

// renderedValue is the JSON-friendly projection of a value.V, since V
// keeps its fields unexported to preserve its immutability guarantees.
func renderedValue(v value.V) any {
	switch v.Kind() {
	case value.KindNull:
		return nil
	case value.KindBoolean:
		b, _ := v.AsBool()
		return b
	case value.KindInteger:
		i, _ := v.AsInt()
		return i
	case value.KindDecimal:
		d, _ := v.AsDecimal()
		return d
	case value.KindString:
		s, _ := v.AsString()
		return s
	case value.KindOctets:
		o, _ := v.AsOctets()
		return base64.StdEncoding.EncodeToString(o)
	case value.KindList:
		items, _ := v.AsList()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = renderedValue(item)
		}
		return out
	case value.KindObject:
		fields, _ := v.AsObject()
		out := make(map[string]any, len(fields))
		for _, f := range fields {
			out[f.Name] = renderedValue(f.Value)
		}
		return out
	default:
		return v.String()
	}
}

// renderedRationale is the JSON-friendly projection of a rationale.R tree.
type renderedRationale struct {
	Verdict       string              `json:"verdict"`
	Label         string              `json:"label,omitempty"`
	Input         any                 `json:"input"`
	Output        any                 `json:"output,omitempty"`
	Authoritative bool                `json:"authoritative,omitempty"`
	Severity      string              `json:"severity,omitempty"`
	Children      []renderedRationale `json:"children,omitempty"`
}

func renderRationale(r *rationale.R) renderedRationale {
	if r == nil {
		return renderedRationale{}
	}
	children := make([]renderedRationale, 0, len(r.Children))
	for _, c := range r.Children {
		children = append(children, renderRationale(c))
	}
	return renderedRationale{
		Verdict:       verdictString(r.Verdict),
		Label:         r.Label,
		Input:         renderedValue(r.Input),
		Output:        renderedValue(r.Output),
		Authoritative: r.Authoritative,
		Severity:      r.Severity,
		Children:      children,
	}
}

func verdictString(v rationale.Verdict) string {
	switch {
	case v.IsError():
		return "error:" + string(v.ErrorKind)
	case v.IsOk():
		return "satisfied"
	default:
		return "unsatisfied"
	}
}
