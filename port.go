/*
Copyright 2024 Tim St. Pierre
Digital ports carrying the LCD bus
*/
package hd44780

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Port is an 8-bit digital I/O port. The LCD bus and its control lines are
// bits of one or more ports.
type Port interface {
	// Out drives the bits selected by mask to the matching bits of v.
	Out(mask, v byte) error
	// In samples the input levels of the port.
	In() (byte, error)
	// Direction makes the bits selected by mask outputs (out true) or inputs.
	Direction(mask byte, out bool) error
}

// Line is one signal of the bus: a bit of a port.
type Line struct {
	Port Port
	Bit  uint8
}

func (l Line) mask() byte {
	return 1 << l.Bit
}

func (l Line) bound() bool {
	return l.Port != nil
}

func (l Line) out(high bool) error {
	var v byte
	if high {
		v = l.mask()
	}
	return l.Port.Out(l.mask(), v)
}

// Pins binds every controller signal to a port bit. In 4-bit mode only
// Data[4] to Data[7] are used; RW is only needed when the busy flag is read.
type Pins struct {
	Data [8]Line
	RS   Line
	E    Line
	RW   Line
}

// GPIOPort groups up to eight periph GPIO pins into a Port. Bit i is pin i;
// nil pins are skipped.
type GPIOPort struct {
	pins  [8]gpio.PinIO
	level byte
}

// NewGPIOPort returns a port over pins, lowest bit first.
func NewGPIOPort(pins ...gpio.PinIO) (*GPIOPort, error) {
	if len(pins) > 8 {
		return nil, errors.New("hd44780: a port has at most 8 pins")
	}
	p := &GPIOPort{}
	copy(p.pins[:], pins)
	return p, nil
}

func (p *GPIOPort) String() string {
	return fmt.Sprintf("gpio%v", p.pins)
}

func (p *GPIOPort) Out(mask, v byte) error {
	for i, pin := range p.pins {
		bit := byte(1) << i
		if pin == nil || mask&bit == 0 {
			continue
		}
		l := gpio.Level(v&bit != 0)
		if err := pin.Out(l); err != nil {
			return fmt.Errorf("hd44780: %s: %w", pin, err)
		}
		p.level = p.level&^bit | v&bit
	}
	return nil
}

func (p *GPIOPort) In() (byte, error) {
	var v byte
	for i, pin := range p.pins {
		if pin != nil && pin.Read() == gpio.High {
			v |= 1 << i
		}
	}
	return v, nil
}

func (p *GPIOPort) Direction(mask byte, out bool) error {
	for i, pin := range p.pins {
		bit := byte(1) << i
		if pin == nil || mask&bit == 0 {
			continue
		}
		var err error
		if out {
			err = pin.Out(gpio.Level(p.level&bit != 0))
		} else {
			err = pin.In(gpio.PullNoChange, gpio.NoEdge)
		}
		if err != nil {
			return fmt.Errorf("hd44780: %s: %w", pin, err)
		}
	}
	return nil
}

// GPIOPins wires a display straight to periph GPIO pins. data holds D4..D7
// for a 4-bit bus or D0..D7 for an 8-bit bus. rw may be nil when the busy
// flag is not used.
func GPIOPins(rs, e, rw gpio.PinIO, data ...gpio.PinIO) (Pins, error) {
	var pins Pins
	if len(data) != 4 && len(data) != 8 {
		return pins, fmt.Errorf("hd44780: need 4 or 8 data pins, got %d", len(data))
	}
	if rs == nil || e == nil {
		return pins, errors.New("hd44780: RS and E pins are required")
	}
	dp, err := NewGPIOPort(data...)
	if err != nil {
		return pins, err
	}
	first := 8 - len(data)
	for i := range data {
		pins.Data[first+i] = Line{Port: dp, Bit: uint8(i)}
	}
	cp, err := NewGPIOPort(rs, e, rw)
	if err != nil {
		return pins, err
	}
	pins.RS = Line{Port: cp, Bit: 0}
	pins.E = Line{Port: cp, Bit: 1}
	if rw != nil {
		pins.RW = Line{Port: cp, Bit: 2}
	}
	return pins, nil
}
