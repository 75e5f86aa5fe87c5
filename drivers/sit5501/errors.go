package sit5501

import "ppsdo-go/x/conv"

// RegisterMismatch is the cause carried by a register_consistency error:
// the write was acknowledged but readback disagrees with the shadow.
type RegisterMismatch struct {
	Reg  uint8
	Want uint16
	Got  uint16
}

func (m *RegisterMismatch) Error() string {
	return "reg " + conv.Hex16(uint16(m.Reg)) + " want " + conv.Hex16(m.Want) + " got " + conv.Hex16(m.Got)
}
