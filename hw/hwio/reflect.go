package hwio

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// InitRegs initializes all the hwio fields of the structure pointed by obj,
// according to their "hwio" struct tag. The tag is a comma-separated list of
// options:
//
//	offset=0x12     Byte offset of the field within its bank. Fields
//	                without offset aren't part of any bank.
//	bank=NN         Bank number (default 0).
//	reset=0x12      Reg8 initial value.
//	rwmask=0xF0     Reg8 bits writable from the bus (default 0xFF).
//	readonly        Reg8 ignores bus writes; Mem rejects them.
//	writeonly       Reg8 reads 0xFF from the bus.
//	size=0x80       Mem/Device size. Mem buffers are allocated if nil.
//	rcb, wcb, pcb   Bind the read/write/peek callback to the method named
//	                Read<NAME>, Write<NAME> or Peek<NAME>, where NAME is the
//	                upper-cased field name.
func InitRegs(obj any) error {
	val := reflect.ValueOf(obj)
	if val.Kind() != reflect.Pointer || val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("InitRegs: expected pointer to struct, got %T", obj)
	}
	st := val.Elem()
	for i := range st.NumField() {
		field := st.Type().Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		opts, err := parseTag(tag)
		if err != nil {
			return fmt.Errorf("%s: %w", field.Name, err)
		}

		switch ptr := st.Field(i).Addr().Interface().(type) {
		case *Reg8:
			err = initReg8(val, field.Name, ptr, opts)
		case *Mem:
			err = initMem(val, field.Name, ptr, opts)
		case *Device:
			err = initDevice(val, field.Name, ptr, opts)
		default:
			err = fmt.Errorf("unsupported hwio type %T", ptr)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", field.Name, err)
		}
	}
	return nil
}

// MustInitRegs is like InitRegs but panics on error.
func MustInitRegs(obj any) {
	if err := InitRegs(obj); err != nil {
		panic(err)
	}
}

type tagOpts map[string]string

func parseTag(tag string) (tagOpts, error) {
	opts := make(tagOpts)
	for _, opt := range strings.Split(tag, ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		k, v, _ := strings.Cut(opt, "=")
		if _, dup := opts[k]; dup {
			return nil, fmt.Errorf("duplicate option %q", k)
		}
		opts[k] = v
	}
	return opts, nil
}

func (o tagOpts) has(k string) bool {
	_, ok := o[k]
	return ok
}

func (o tagOpts) uint(k string, bits int, def uint64) (uint64, error) {
	s, ok := o[k]
	if !ok {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", k, s, err)
	}
	return v, nil
}

func method[F any](obj reflect.Value, name string) (F, error) {
	var fn F
	m := obj.MethodByName(name)
	if !m.IsValid() {
		return fn, fmt.Errorf("missing method %s", name)
	}
	fn, ok := m.Interface().(F)
	if !ok {
		return fn, fmt.Errorf("method %s has type %s, want %T", name, m.Type(), fn)
	}
	return fn, nil
}

func initReg8(obj reflect.Value, name string, reg *Reg8, opts tagOpts) error {
	reset, err := opts.uint("reset", 8, 0)
	if err != nil {
		return err
	}
	rwmask, err := opts.uint("rwmask", 8, 0xFF)
	if err != nil {
		return err
	}

	reg.Name = name
	reg.Value = uint8(reset)
	reg.RoMask = ^uint8(rwmask)
	switch {
	case opts.has("readonly") && opts.has("writeonly"):
		return fmt.Errorf("readonly and writeonly are exclusive")
	case opts.has("readonly"):
		reg.Flags = ReadOnlyFlag
	case opts.has("writeonly"):
		reg.Flags = WriteOnlyFlag
	}

	upper := strings.ToUpper(name)
	if opts.has("rcb") {
		if reg.ReadCb, err = method[func(uint8) uint8](obj, "Read"+upper); err != nil {
			return err
		}
	}
	if opts.has("pcb") {
		if reg.PeekCb, err = method[func(uint8) uint8](obj, "Peek"+upper); err != nil {
			return err
		}
	}
	if opts.has("wcb") {
		if reg.WriteCb, err = method[func(uint8, uint8)](obj, "Write"+upper); err != nil {
			return err
		}
	}
	return nil
}

func initMem(obj reflect.Value, name string, mem *Mem, opts tagOpts) error {
	size, err := opts.uint("size", 17, 0)
	if err != nil {
		return err
	}
	mem.Name = name
	if mem.Data == nil {
		if size == 0 {
			return fmt.Errorf("missing size")
		}
		mem.Data = make([]byte, size)
	}
	if opts.has("readonly") {
		mem.Flags |= MemFlagReadOnly
	}
	if opts.has("wcb") {
		if mem.WriteCb, err = method[func(uint16, uint8)](obj, "Write"+strings.ToUpper(name)); err != nil {
			return err
		}
	}
	return nil
}

func initDevice(obj reflect.Value, name string, dev *Device, opts tagOpts) error {
	size, err := opts.uint("size", 17, 1)
	if err != nil {
		return err
	}
	dev.Name = name
	dev.Size = int(size)

	upper := strings.ToUpper(name)
	if opts.has("rcb") {
		if dev.ReadCb, err = method[func(uint16) uint8](obj, "Read"+upper); err != nil {
			return err
		}
	}
	if opts.has("pcb") {
		if dev.PeekCb, err = method[func(uint16) uint8](obj, "Peek"+upper); err != nil {
			return err
		}
	}
	if opts.has("wcb") {
		if dev.WriteCb, err = method[func(uint16, uint8)](obj, "Write"+upper); err != nil {
			return err
		}
	}
	return nil
}

type bankRegInfo struct {
	regPtr any
	offset uint16
}

// bankGetRegs returns the fields of bank bankNum, in declaration order.
func bankGetRegs(obj any, bankNum int) ([]bankRegInfo, error) {
	val := reflect.ValueOf(obj)
	if val.Kind() != reflect.Pointer || val.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected pointer to struct, got %T", obj)
	}
	st := val.Elem()

	var regs []bankRegInfo
	for i := range st.NumField() {
		field := st.Type().Field(i)
		tag, ok := field.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		opts, err := parseTag(tag)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field.Name, err)
		}
		if !opts.has("offset") {
			continue
		}
		bank, err := opts.uint("bank", 8, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field.Name, err)
		}
		if int(bank) != bankNum {
			continue
		}
		off, err := opts.uint("offset", 16, 0)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field.Name, err)
		}
		regs = append(regs, bankRegInfo{
			regPtr: st.Field(i).Addr().Interface(),
			offset: uint16(off),
		})
	}
	return regs, nil
}
