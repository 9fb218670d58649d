/*
Copyright 2024 Tim St. Pierre
Fake bus recording what the controller would latch
*/
package hd44780

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Control port bits of the fake bus.
const (
	ctrlRS = 0
	ctrlE  = 1
	ctrlRW = 2
)

// strobe is the bus state at a rising edge of E.
type strobe struct {
	rs   bool
	rw   bool
	data byte // data port level
	dir  byte // data port direction, 1 = output
}

type xfer struct {
	b    byte
	data bool
}

type fakeBus struct {
	data, ctrl *fakePort
	strobes    []strobe
	delays     []time.Duration
	// status feeds data port reads, one entry per In call; empty reads 0
	status    []byte
	reads     int
	inErr     error
	rsChanges int
}

type fakePort struct {
	bus   *fakeBus
	level byte
	dir   byte
}

func (p *fakePort) Out(mask, v byte) error {
	prev := p.level
	p.level = p.level&^mask | v&mask
	if p != p.bus.ctrl {
		return nil
	}
	if (prev^p.level)&(1<<ctrlRS) != 0 {
		p.bus.rsChanges++
	}
	if prev&(1<<ctrlE) == 0 && p.level&(1<<ctrlE) != 0 {
		p.bus.strobes = append(p.bus.strobes, strobe{
			rs:   p.level&(1<<ctrlRS) != 0,
			rw:   p.level&(1<<ctrlRW) != 0,
			data: p.bus.data.level,
			dir:  p.bus.data.dir,
		})
	}
	return nil
}

func (p *fakePort) In() (byte, error) {
	b := p.bus
	if b.inErr != nil {
		return 0, b.inErr
	}
	b.reads++
	if len(b.status) == 0 {
		return 0, nil
	}
	v := b.status[0]
	b.status = b.status[1:]
	return v, nil
}

func (p *fakePort) Direction(mask byte, out bool) error {
	if out {
		p.dir |= mask
	} else {
		p.dir &^= mask
	}
	return nil
}

func (b *fakeBus) wait(d time.Duration) {
	b.delays = append(b.delays, d)
}

// waits returns the recorded delays without enable pulse widths.
func (b *fakeBus) waits() []time.Duration {
	var out []time.Duration
	for _, d := range b.delays {
		if d != PulseWidthEnable {
			out = append(out, d)
		}
	}
	return out
}

// writeStrobes drops busy-flag reads.
func (b *fakeBus) writeStrobes() []strobe {
	var out []strobe
	for _, s := range b.strobes {
		if !s.rw {
			out = append(out, s)
		}
	}
	return out
}

func (b *fakeBus) readStrobes() int {
	return len(b.strobes) - len(b.writeStrobes())
}

// decode reassembles the bytes the controller latched.
func decode(t *testing.T, strobes []strobe, width BusWidth) []xfer {
	t.Helper()
	var out []xfer
	if width == Bus8Bit {
		for _, s := range strobes {
			out = append(out, xfer{s.data, s.rs})
		}
		return out
	}
	require.Zero(t, len(strobes)%2, "odd number of nibble strobes")
	for i := 0; i < len(strobes); i += 2 {
		hi, lo := strobes[i], strobes[i+1]
		require.Equal(t, hi.rs, lo.rs, "RS changed between nibbles of byte %d", i/2)
		out = append(out, xfer{hi.data&0xf0 | lo.data>>4, hi.rs})
	}
	return out
}

// newFakeBus returns a bus with the data lines on one port (D(i) on bit i)
// and RS, E, RW on a second.
func newFakeBus(width BusWidth) (*fakeBus, Pins) {
	b := &fakeBus{}
	b.data = &fakePort{bus: b, dir: 0xff}
	b.ctrl = &fakePort{bus: b, dir: 0xff}
	var pins Pins
	first := 0
	if width == Bus4Bit {
		first = 4
	}
	for i := first; i < 8; i++ {
		pins.Data[i] = Line{Port: b.data, Bit: uint8(i)}
	}
	pins.RS = Line{Port: b.ctrl, Bit: ctrlRS}
	pins.E = Line{Port: b.ctrl, Bit: ctrlE}
	pins.RW = Line{Port: b.ctrl, Bit: ctrlRW}
	return b, pins
}

func newTestDev(t *testing.T, opts Opts) (*Dev, *fakeBus) {
	t.Helper()
	b, pins := newFakeBus(opts.Width)
	d, err := makeDev(pins, &opts, b.wait)
	require.NoError(t, err)
	return d, b
}

// reset forgets everything recorded so far.
func (b *fakeBus) reset() {
	b.strobes = nil
	b.delays = nil
	b.reads = 0
	b.rsChanges = 0
}

func modeOpts(width BusWidth, busy bool) Opts {
	o := DefaultOpts
	o.Width = width
	o.BusyFlag = busy
	return o
}

var allModes = []struct {
	name  string
	width BusWidth
	busy  bool
}{
	{"8bit timed", Bus8Bit, false},
	{"8bit busy", Bus8Bit, true},
	{"4bit timed", Bus4Bit, false},
	{"4bit busy", Bus4Bit, true},
}
