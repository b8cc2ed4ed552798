// Package mmio describes 32-bit memory-mapped registers and the bit fields inside them.
//
// A Register is a named absolute address. A Field is a contiguous run of bits inside one
// Register. Every mutating helper except Register.Set is a read-modify-write: the register
// is loaded once, only the bits named by the mask or field change, and the result is
// stored once. Bits outside the mask are written back exactly as read.
//
// All access goes through a Bus so the same register map drives real silicon (a
// volatile bus, stm32f103 builds) and the host simulator.
package mmio

// Bus is the access path to memory-mapped registers.
type Bus interface {
	Load(addr uintptr) uint32
	Store(addr uintptr, v uint32)
}

// Register is a 32-bit register at a fixed address.
type Register struct {
	Name string
	Addr uintptr
}

// At returns the register at base+offset.
func At(name string, base, offset uintptr) Register {
	return Register{Name: name, Addr: base + offset}
}

// Get loads the register.
func (r Register) Get(b Bus) uint32 { return b.Load(r.Addr) }

// Set stores v, replacing every bit of the register.
func (r Register) Set(b Bus, v uint32) { b.Store(r.Addr, v) }

// SetBits ORs mask into the register.
func (r Register) SetBits(b Bus, mask uint32) {
	b.Store(r.Addr, b.Load(r.Addr)|mask)
}

// ClearBits clears the bits of mask.
func (r Register) ClearBits(b Bus, mask uint32) {
	b.Store(r.Addr, b.Load(r.Addr)&^mask)
}

// HasBits reports whether every bit of mask is set.
func (r Register) HasBits(b Bus, mask uint32) bool {
	return b.Load(r.Addr)&mask == mask
}

// ReplaceBits clears mask<<pos and then ORs (value&mask)<<pos in a single store.
// Same contract as volatile.Register32.ReplaceBits.
func (r Register) ReplaceBits(b Bus, value, mask uint32, pos uint8) {
	v := b.Load(r.Addr)
	v &^= mask << pos
	v |= (value & mask) << pos
	b.Store(r.Addr, v)
}

// Field is a bit field of Width bits starting at bit Pos of Reg.
type Field struct {
	Reg   Register
	Name  string
	Pos   uint8
	Width uint8
}

// Bit returns a one-bit field.
func Bit(reg Register, name string, pos uint8) Field {
	return Field{Reg: reg, Name: name, Pos: pos, Width: 1}
}

// Bits returns a field of width bits at pos.
func Bits(reg Register, name string, pos, width uint8) Field {
	return Field{Reg: reg, Name: name, Pos: pos, Width: width}
}

// max is the field's all-ones value before shifting.
func (f Field) max() uint32 {
	if f.Width >= 32 {
		return 0xFFFFFFFF
	}
	return 1<<f.Width - 1
}

// Mask is the field's bits in register position.
func (f Field) Mask() uint32 { return f.max() << f.Pos }

// Overlaps reports whether f and g share a bit of the same register.
func (f Field) Overlaps(g Field) bool {
	return f.Reg.Addr == g.Reg.Addr && f.Mask()&g.Mask() != 0
}

// Get returns the field value, shifted down to bit 0.
func (f Field) Get(b Bus) uint32 {
	return (f.Reg.Get(b) >> f.Pos) & f.max()
}

// Set writes value into the field: clear the field, then OR the new pattern.
// Bits of value above Width are dropped.
func (f Field) Set(b Bus, value uint32) {
	f.Reg.ReplaceBits(b, value, f.max(), f.Pos)
}

// Clear zeroes the field.
func (f Field) Clear(b Bus) { f.Reg.ClearBits(b, f.Mask()) }

// Enable sets every bit of the field. Meant for one-bit enables.
func (f Field) Enable(b Bus) { f.Reg.SetBits(b, f.Mask()) }

// IsSet reports whether every bit of the field is set.
func (f Field) IsSet(b Bus) bool { return f.Reg.HasBits(b, f.Mask()) }

func (f Field) String() string { return f.Reg.Name + "." + f.Name }
