/*
Copyright 2024 Tim St. Pierre
Control line and data bus manipulation
*/
package hd44780

import (
	"errors"
	"fmt"
	"time"
)

// dataGroup is the subset of data lines that live on one port.
type dataGroup struct {
	port Port
	mask byte
	// bits[i] is the port bit of D(i), or 0xff when D(i) is elsewhere
	bits [8]uint8
}

// signals drives the raw lines of one display.
type signals struct {
	pins   Pins
	groups []dataGroup // D0..D7 or D4..D7, grouped by port
	delay  func(time.Duration)
}

func newSignals(pins Pins, width BusWidth, busy bool, wait func(time.Duration)) (*signals, error) {
	if !pins.RS.bound() || !pins.E.bound() {
		return nil, errors.New("hd44780: RS and E must be bound")
	}
	if busy && !pins.RW.bound() {
		return nil, errors.New("hd44780: busy flag needs RW bound")
	}
	first := 0
	if width == Bus4Bit {
		first = 4
	}
	s := &signals{pins: pins, delay: wait}
	for i := first; i < 8; i++ {
		l := pins.Data[i]
		if !l.bound() {
			return nil, fmt.Errorf("hd44780: D%d must be bound for a %s bus", i, width)
		}
		if l.Bit > 7 {
			return nil, fmt.Errorf("hd44780: D%d bit %d out of range", i, l.Bit)
		}
		s.group(l.Port).add(i, l.Bit)
	}
	return s, nil
}

func (s *signals) group(p Port) *dataGroup {
	for i := range s.groups {
		if s.groups[i].port == p {
			return &s.groups[i]
		}
	}
	g := dataGroup{port: p}
	for i := range g.bits {
		g.bits[i] = 0xff
	}
	s.groups = append(s.groups, g)
	return &s.groups[len(s.groups)-1]
}

func (g *dataGroup) add(signal int, bit uint8) {
	g.bits[signal] = bit
	g.mask |= 1 << bit
}

func (s *signals) setRS(data bool) error {
	return s.pins.RS.out(data)
}

func (s *signals) setRW(read bool) error {
	return s.pins.RW.out(read)
}

func (s *signals) setE(high bool) error {
	return s.pins.E.out(high)
}

// pulseEnable latches the bus into the controller.
func (s *signals) pulseEnable() error {
	if err := s.setE(true); err != nil {
		return err
	}
	s.delay(PulseWidthEnable)
	return s.setE(false)
}

// place puts b on the data lines, D(i) taking bit i of b.
func (s *signals) place(b byte) error {
	for _, g := range s.groups {
		var v byte
		for i, bit := range g.bits {
			if bit != 0xff && b&(1<<i) != 0 {
				v |= 1 << bit
			}
		}
		if err := g.port.Out(g.mask, v); err != nil {
			return err
		}
	}
	return nil
}

// sample reads the data lines back into a byte, D(i) into bit i.
func (s *signals) sample() (byte, error) {
	var b byte
	for _, g := range s.groups {
		in, err := g.port.In()
		if err != nil {
			return 0, err
		}
		for i, bit := range g.bits {
			if bit != 0xff && in&(1<<bit) != 0 {
				b |= 1 << i
			}
		}
	}
	return b, nil
}

// writeByte assigns the full byte to D7..D0.
func (s *signals) writeByte(b byte) error {
	return s.place(b)
}

// writeHighNibble puts bits 7..4 of b on D7..D4.
func (s *signals) writeHighNibble(b byte) error {
	return s.place(b & 0xf0)
}

// writeLowNibble puts bits 3..0 of b on D7..D4.
func (s *signals) writeLowNibble(b byte) error {
	return s.place(b << 4)
}

// readNibble samples D7..D4 into the low four bits.
func (s *signals) readNibble() (byte, error) {
	b, err := s.sample()
	return b >> 4, err
}

func (s *signals) dataDirection(out bool) error {
	for _, g := range s.groups {
		if err := g.port.Direction(g.mask, out); err != nil {
			return err
		}
	}
	return nil
}

// configure makes every bound line an output and parks E and RW low.
func (s *signals) configure() error {
	if err := s.dataDirection(true); err != nil {
		return err
	}
	for _, l := range []Line{s.pins.RS, s.pins.E, s.pins.RW} {
		if !l.bound() {
			continue
		}
		if err := l.Port.Direction(l.mask(), true); err != nil {
			return err
		}
		if err := l.out(false); err != nil {
			return err
		}
	}
	return nil
}
