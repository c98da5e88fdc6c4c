package log

import (
	"fmt"
	"strconv"
)

type fieldKind uint8

const (
	kindString fieldKind = iota
	kindBool
	kindHex8
	kindHex16
	kindInt
	kindError
	kindStringer
)

// zfield is a deferred log field: it's only formatted once the entry is
// emitted. num holds integers and booleans.
type zfield struct {
	kind fieldKind
	key  string
	str  string
	num  uint64
	err  error
	sv   fmt.Stringer
}

func (f *zfield) value() string {
	switch f.kind {
	case kindString:
		return f.str
	case kindBool:
		return strconv.FormatBool(f.num != 0)
	case kindHex8:
		return fmt.Sprintf("%02x", f.num)
	case kindHex16:
		return fmt.Sprintf("%04x", f.num)
	case kindInt:
		return strconv.FormatInt(int64(f.num), 10)
	case kindError:
		if f.err == nil {
			return "<nil>"
		}
		return f.err.Error()
	case kindStringer:
		return f.sv.String()
	}
	return ""
}
