// Package stm32f1 is the STM32F103 register map used by the diagnostic serial firmware:
// the APB2 clock gate, GPIOA high configuration register and USART1.
// Addresses and bit positions follow RM0008.
package stm32f1

import "github.com/jangala-dev/tinygo-diagserial/mmio"

// Peripheral base addresses.
const (
	RCCBase    uintptr = 0x4002_1000
	GPIOABase  uintptr = 0x4001_0800
	USART1Base uintptr = 0x4001_3800
)

// RCC
var (
	RCC_APB2ENR          = mmio.At("RCC_APB2ENR", RCCBase, 0x18)
	RCC_APB2ENR_IOPAEN   = mmio.Bit(RCC_APB2ENR, "IOPAEN", 2)
	RCC_APB2ENR_USART1EN = mmio.Bit(RCC_APB2ENR, "USART1EN", 14)
)

// GPIOA. CRH holds a 4-bit MODE/CNF nibble per pin 8..15; PA9 and PA10 are
// adjacent so both nibbles form one 8-bit field.
var (
	GPIOA_CRH          = mmio.At("GPIOA_CRH", GPIOABase, 0x04)
	GPIOA_CRH_PA9_PA10 = mmio.Bits(GPIOA_CRH, "PA9_PA10", 4, 8)
)

// CRH nibbles, CNF in bits 3:2 and MODE in bits 1:0.
const (
	PinAltPushPull50MHz = 0xB // CNF=10 MODE=11
	PinInputPull        = 0x8 // CNF=10 MODE=00

	// USART1Pins is the PA9_PA10 pattern: TX alternate push-pull, RX input with bias.
	USART1Pins = PinInputPull<<4 | PinAltPushPull50MHz
)

// USART1
var (
	USART1_SR   = mmio.At("USART1_SR", USART1Base, 0x00)
	USART1_DR   = mmio.At("USART1_DR", USART1Base, 0x04)
	USART1_BRR  = mmio.At("USART1_BRR", USART1Base, 0x08)
	USART1_CR1  = mmio.At("USART1_CR1", USART1Base, 0x0C)
	USART1_CR2  = mmio.At("USART1_CR2", USART1Base, 0x10)
	USART1_GTPR = mmio.At("USART1_GTPR", USART1Base, 0x18)

	USART1_SR_TC  = mmio.Bit(USART1_SR, "TC", 6)
	USART1_SR_TXE = mmio.Bit(USART1_SR, "TXE", 7)

	USART1_DR_DR = mmio.Bits(USART1_DR, "DR", 0, 9)

	USART1_BRR_FRACTION = mmio.Bits(USART1_BRR, "DIV_Fraction", 0, 4)
	USART1_BRR_MANTISSA = mmio.Bits(USART1_BRR, "DIV_Mantissa", 4, 12)

	USART1_CR1_RE  = mmio.Bit(USART1_CR1, "RE", 2)
	USART1_CR1_TE  = mmio.Bit(USART1_CR1, "TE", 3)
	USART1_CR1_PCE = mmio.Bit(USART1_CR1, "PCE", 10)
	USART1_CR1_M   = mmio.Bit(USART1_CR1, "M", 12)
	USART1_CR1_UE  = mmio.Bit(USART1_CR1, "UE", 13)

	USART1_CR2_STOP = mmio.Bits(USART1_CR2, "STOP", 12, 2)
)

// Reset values of the modelled registers.
const (
	ResetAPB2ENR = 0x0000_0000
	ResetCRH     = 0x4444_4444 // every pin floating input
	ResetSR      = 0x0000_00C0 // TXE | TC
)

// Registers lists every register of the map.
var Registers = []mmio.Register{
	RCC_APB2ENR,
	GPIOA_CRH,
	USART1_SR,
	USART1_DR,
	USART1_BRR,
	USART1_CR1,
	USART1_CR2,
	USART1_GTPR,
}

// Fields lists every named field of the map.
var Fields = []mmio.Field{
	RCC_APB2ENR_IOPAEN,
	RCC_APB2ENR_USART1EN,
	GPIOA_CRH_PA9_PA10,
	USART1_SR_TC,
	USART1_SR_TXE,
	USART1_DR_DR,
	USART1_BRR_FRACTION,
	USART1_BRR_MANTISSA,
	USART1_CR1_RE,
	USART1_CR1_TE,
	USART1_CR1_PCE,
	USART1_CR1_M,
	USART1_CR1_UE,
	USART1_CR2_STOP,
}

// Lookup returns the register at addr.
func Lookup(addr uintptr) (mmio.Register, bool) {
	for _, r := range Registers {
		if r.Addr == addr {
			return r, true
		}
	}
	return mmio.Register{}, false
}
