package eval

import (
	"strconv"
	"strings"

	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
)

// identityKey renders v as a canonical string, used as the input half of
// the recursion trail's (pattern-id, input-identity) key (spec §4.3). It
// only needs to distinguish values, not to be human-readable.
func identityKey(v value.V) string {
	var b strings.Builder
	writeIdentity(&b, v)
	return b.String()
}

func writeIdentity(b *strings.Builder, v value.V) {
	switch v.Kind() {
	case value.KindNull:
		b.WriteString("n")
	case value.KindBoolean:
		x, _ := v.AsBool()
		b.WriteString("b:")
		b.WriteString(strconv.FormatBool(x))
	case value.KindInteger:
		x, _ := v.AsInt()
		b.WriteString("i:")
		b.WriteString(strconv.FormatInt(x, 10))
	case value.KindDecimal:
		x, _ := v.AsDecimal()
		b.WriteString("d:")
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case value.KindString:
		s, _ := v.AsString()
		b.WriteString("s:")
		b.WriteString(strconv.Quote(s))
	case value.KindOctets:
		o, _ := v.AsOctets()
		b.WriteString("o:")
		b.WriteString(strconv.Itoa(len(o)))
		b.WriteByte(':')
		b.Write(o)
	case value.KindList:
		items, _ := v.AsList()
		b.WriteString("l[")
		for i, it := range items {
			if i > 0 {
				b.WriteByte(',')
			}
			writeIdentity(b, it)
		}
		b.WriteByte(']')
	case value.KindObject:
		fields, _ := v.AsObject()
		b.WriteString("o{")
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(f.Name))
			b.WriteByte(':')
			writeIdentity(b, f.Value)
		}
		b.WriteByte('}')
	}
}
