/*
Copyright 2024 Tim St. Pierre
I²C port expanders carrying the LCD bus
Thanks to Dave Cheney for figuring out the registers!
*/
package hd44780

import (
	"encoding/binary"
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/mmr"
)

// Backpack wiring of the common PCF8574 LCD adapter.
const (
	RS        = 0
	WR        = 1
	EN        = 2
	BACKLIGHT = 3
	D4        = 4
	D5        = 5
	D6        = 6
	D7        = 7
)

// PCF8574Port is a PCF8574 quasi-bidirectional expander. A pin is read by
// latching it high and letting the peripheral pull it down.
type PCF8574Port struct {
	c      conn.Conn
	latch  byte
	inputs byte
}

// NewPCF8574 returns a port for the expander at addr. 0 selects the usual
// backpack address 0x27.
func NewPCF8574(b i2c.Bus, addr uint16) (*PCF8574Port, error) {
	switch {
	case addr == 0:
		addr = 0x27
	case addr >= 0x20 && addr <= 0x27, addr >= 0x38 && addr <= 0x3F:
	default:
		return nil, fmt.Errorf("hd44780 %#x: address not supported by PCF8574", addr)
	}
	p := &PCF8574Port{c: &i2c.Dev{Bus: b, Addr: addr}}
	if err := p.flush(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PCF8574Port) String() string {
	return fmt.Sprintf("pcf8574{%s}", p.c)
}

func (p *PCF8574Port) Out(mask, v byte) error {
	p.latch = p.latch&^mask | v&mask
	return p.flush()
}

func (p *PCF8574Port) In() (byte, error) {
	var r [1]byte
	if err := p.c.Tx(nil, r[:]); err != nil {
		return 0, fmt.Errorf("hd44780: %s read: %w", p, err)
	}
	return r[0], nil
}

func (p *PCF8574Port) Direction(mask byte, out bool) error {
	if out {
		p.inputs &^= mask
	} else {
		p.inputs |= mask
	}
	return p.flush()
}

// SetBacklight switches the backpack backlight transistor.
func (p *PCF8574Port) SetBacklight(on bool) error {
	return p.Out(1<<BACKLIGHT, pinInterpret(BACKLIGHT, 0x00, on))
}

func (p *PCF8574Port) flush() error {
	if err := p.c.Tx([]byte{p.latch | p.inputs}, nil); err != nil {
		return fmt.Errorf("hd44780: %s write: %w", p, err)
	}
	return nil
}

// BackpackPins returns the binding of a PCF8574 LCD backpack: a 4-bit bus on
// D4..D7 with RS, R/W and E on the low bits.
func BackpackPins(p *PCF8574Port) Pins {
	var pins Pins
	for i, bit := range []uint8{D4, D5, D6, D7} {
		pins.Data[4+i] = Line{Port: p, Bit: bit}
	}
	pins.RS = Line{Port: p, Bit: RS}
	pins.RW = Line{Port: p, Bit: WR}
	pins.E = Line{Port: p, Bit: EN}
	return pins
}

// MCP23008 registers.
const (
	mcpIODIR = 0x00
	mcpGPIO  = 0x09
	mcpOLAT  = 0x0A
)

// Wiring of the Adafruit I²C/SPI backpack on its MCP23008 side. R/W is tied
// to ground, so the busy flag cannot be read.
const (
	afRS        = 1
	afEN        = 2
	afD4        = 3
	afBacklight = 7
)

// MCP23008Port is an MCP23008 register-mapped expander.
type MCP23008Port struct {
	c     mmr.Dev8
	iodir byte
	olat  byte
}

// NewMCP23008 returns a port for the expander at addr with every pin an
// output driven low. 0 selects 0x20.
func NewMCP23008(b i2c.Bus, addr uint16) (*MCP23008Port, error) {
	switch {
	case addr == 0:
		addr = 0x20
	case addr >= 0x20 && addr <= 0x27:
	default:
		return nil, errors.New("hd44780: given address not supported by MCP23008")
	}
	p := &MCP23008Port{
		c: mmr.Dev8{Conn: &i2c.Dev{Bus: b, Addr: addr}, Order: binary.LittleEndian},
	}
	if err := p.c.WriteUint8(mcpOLAT, 0); err != nil {
		return nil, fmt.Errorf("hd44780: %s: %w", p, err)
	}
	if err := p.c.WriteUint8(mcpIODIR, 0); err != nil {
		return nil, fmt.Errorf("hd44780: %s: %w", p, err)
	}
	return p, nil
}

func (p *MCP23008Port) String() string {
	return fmt.Sprintf("mcp23008{%s}", p.c.Conn)
}

func (p *MCP23008Port) Out(mask, v byte) error {
	p.olat = p.olat&^mask | v&mask
	if err := p.c.WriteUint8(mcpOLAT, p.olat); err != nil {
		return fmt.Errorf("hd44780: %s: %w", p, err)
	}
	return nil
}

func (p *MCP23008Port) In() (byte, error) {
	v, err := p.c.ReadUint8(mcpGPIO)
	if err != nil {
		return 0, fmt.Errorf("hd44780: %s: %w", p, err)
	}
	return v, nil
}

func (p *MCP23008Port) Direction(mask byte, out bool) error {
	// IODIR bits set to 1 are inputs
	if out {
		p.iodir &^= mask
	} else {
		p.iodir |= mask
	}
	if err := p.c.WriteUint8(mcpIODIR, p.iodir); err != nil {
		return fmt.Errorf("hd44780: %s: %w", p, err)
	}
	return nil
}

// SetBacklight switches the Adafruit backpack backlight.
func (p *MCP23008Port) SetBacklight(on bool) error {
	return p.Out(1<<afBacklight, pinInterpret(afBacklight, 0x00, on))
}

// AdafruitPins returns the binding of the Adafruit I²C backpack: a 4-bit bus
// on GP3..GP6, RS on GP1, E on GP2 and no R/W.
func AdafruitPins(p *MCP23008Port) Pins {
	var pins Pins
	for i := 0; i < 4; i++ {
		pins.Data[4+i] = Line{Port: p, Bit: uint8(afD4 + i)}
	}
	pins.RS = Line{Port: p, Bit: afRS}
	pins.E = Line{Port: p, Bit: afEN}
	return pins
}

// pinInterpret sets or clears one pin of a port image.
func pinInterpret(pin, data byte, value bool) byte {
	if value {
		return data | 0x01<<pin
	}
	return data &^ (0x01 << pin)
}
