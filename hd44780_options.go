/*
Copyright 2024 Tim St. Pierre
Options for hd44780 character display
*/
package hd44780

import (
	"errors"
	"time"
)

// BusWidth selects how many data lines connect the controller.
type BusWidth uint8

const (
	Bus4Bit BusWidth = 4
	Bus8Bit BusWidth = 8
)

func (w BusWidth) String() string {
	switch w {
	case Bus4Bit:
		return "4bit"
	case Bus8Bit:
		return "8bit"
	default:
		return "invalid"
	}
}

// Controller timing. These are datasheet minimums; every wait honours them
// as lower bounds.
const (
	DelayPowerOn     = 50 * time.Millisecond  // before the first function-set
	DelayInit2       = 5 * time.Millisecond   // after the first function-set
	DelayInit3       = 100 * time.Microsecond // after the second function-set
	DelayCommand     = 50 * time.Microsecond  // after each byte on timed buses
	DelayClear       = 1600 * time.Microsecond
	PulseWidthEnable = 500 * time.Nanosecond
)

type Opts struct {
	// How many lines does the display have
	Lines uint8
	Cols  uint8
	// Width of the data bus
	Width BusWidth
	// Poll the busy flag over R/W instead of waiting DelayCommand
	BusyFlag bool
	// Bit of the status byte holding the busy flag
	BusyBit uint8
	// 5x10 dot font instead of 5x8
	Font5x10 bool
}

var DefaultOpts = Opts{
	Lines:   2,
	Cols:    16,
	Width:   Bus4Bit,
	BusyBit: 7,
}

func (o *Opts) validate() error {
	if o.Lines < 1 || o.Lines > 4 {
		return errors.New("hd44780: lines must be between 1 and 4")
	}
	if o.Cols == 0 || o.Cols > 40 {
		return errors.New("hd44780: cols must be between 1 and 40")
	}
	if o.Width != Bus4Bit && o.Width != Bus8Bit {
		return errors.New("hd44780: bus width must be 4 or 8")
	}
	if o.BusyBit > 7 {
		return errors.New("hd44780: busy bit must be between 0 and 7")
	}
	return nil
}

// lineBase returns the DDRAM address of the first cell of each line.
func (o *Opts) lineBase() [4]byte {
	if o.Cols == 16 {
		return [4]byte{0x00, 0x40, 0x10, 0x50}
	}
	return [4]byte{0x00, 0x40, 0x14, 0x54}
}
