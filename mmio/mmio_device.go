//go:build stm32f103

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// Device is the bus of the running chip. Every access is a volatile 32-bit load or store.
var Device Bus = device{}

type device struct{}

func (device) Load(addr uintptr) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(addr)))
}

func (device) Store(addr uintptr, v uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(addr)), v)
}
