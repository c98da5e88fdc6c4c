package log

import (
	"fmt"
	"sync"

	"gopkg.in/Sirupsen/logrus.v0"
)

const maxZFields = 16

// EntryZ is a log entry builder that doesn't allocate on the fast path. All
// methods accept a nil receiver, which is what disabled modules hand out, so
// that a disabled log line costs a single nil check per field.
type EntryZ struct {
	mod   Module
	lvl   Level
	msg   string
	zfbuf [maxZFields]zfield
	zfidx int
}

var entryPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

func NewEntryZ() *EntryZ {
	e := entryPool.Get().(*EntryZ)
	e.zfidx = 0
	return e
}

func (z *EntryZ) add(f zfield) *EntryZ {
	if z == nil {
		return nil
	}
	if z.zfidx < maxZFields {
		z.zfbuf[z.zfidx] = f
		z.zfidx++
	}
	return z
}

func (z *EntryZ) String(key, val string) *EntryZ {
	return z.add(zfield{kind: kindString, key: key, str: val})
}

func (z *EntryZ) Bool(key string, val bool) *EntryZ {
	f := zfield{kind: kindBool, key: key}
	if val {
		f.num = 1
	}
	return z.add(f)
}

func (z *EntryZ) Hex8(key string, val uint8) *EntryZ {
	return z.add(zfield{kind: kindHex8, key: key, num: uint64(val)})
}

func (z *EntryZ) Hex16(key string, val uint16) *EntryZ {
	return z.add(zfield{kind: kindHex16, key: key, num: uint64(val)})
}

func (z *EntryZ) Int(key string, val int) *EntryZ {
	return z.add(zfield{kind: kindInt, key: key, num: uint64(val)})
}

func (z *EntryZ) Error(key string, err error) *EntryZ {
	return z.add(zfield{kind: kindError, key: key, err: err})
}

func (z *EntryZ) Stringer(key string, s fmt.Stringer) *EntryZ {
	return z.add(zfield{kind: kindStringer, key: key, sv: s})
}

// End emits the entry and recycles it. Fatal entries exit the process and
// panic entries panic, as logrus does.
func (z *EntryZ) End() {
	if z == nil {
		return
	}

	fields := make(logrus.Fields, z.zfidx+1)
	fields["_mod"] = z.mod.String()
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].key] = z.zfbuf[i].value()
	}
	entry := logrus.StandardLogger().WithFields(fields)
	lvl, msg := z.lvl, z.msg

	clear(z.zfbuf[:z.zfidx])
	entryPool.Put(z)

	switch lvl {
	case DebugLevel:
		entry.Debug(msg)
	case InfoLevel:
		entry.Info(msg)
	case WarnLevel:
		entry.Warn(msg)
	case ErrorLevel:
		entry.Error(msg)
	case FatalLevel:
		entry.Fatal(msg)
	case PanicLevel:
		entry.Panic(msg)
	}
}
