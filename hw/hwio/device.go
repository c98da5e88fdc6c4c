package hwio

// Device allows manual management of an entire range of addresses.
type Device struct {
	Name string // name of the memory area (for debugging)
	Size int    // size of the memory area

	ReadCb  func(addr uint16) uint8
	PeekCb  func(addr uint16) uint8
	WriteCb func(addr uint16, val uint8)
}

func (d *Device) Read8(addr uint16, peek bool) uint8 {
	switch {
	case peek && d.PeekCb != nil:
		return d.PeekCb(addr)
	case peek, d.ReadCb == nil:
		return 0xFF
	}
	return d.ReadCb(addr)
}

func (d *Device) Write8(addr uint16, val uint8) {
	if d.WriteCb != nil {
		d.WriteCb(addr, val)
	}
}
