package hwio

import "fmt"

// AddressFault reports an access to an address that no region claims.
type AddressFault struct {
	Bus   string
	Addr  uint16
	Write bool
}

func (f *AddressFault) Error() string {
	op := "read"
	if f.Write {
		op = "write"
	}
	return fmt.Sprintf("%s: unmapped %s at $%04X", f.Bus, op, f.Addr)
}
