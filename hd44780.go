/*
Copyright 2024 Tim St. Pierre
Controls an HD44780 character LCD over a 4 or 8 bit parallel bus
Thanks to Dave Cheney for figuring out the registers!
*/
package hd44780

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// Dev is an initialized display. It owns its bus lines exclusively and is not
// safe for concurrent use.
type Dev struct {
	opts     Opts
	s        *signals
	t        transfer
	lineBase [4]byte
	line     uint8
	delay    func(time.Duration)

	displayEnable bool
	cursor        bool
	blink         bool
	autoScroll    bool
}

func (d *Dev) String() string {
	return fmt.Sprintf("hd44780{%s, %dx%d}", d.opts.Width, d.opts.Cols, d.opts.Lines)
}

// New returns an initialized display on pins.
//
// Use default options if nil is used.
func New(pins Pins, opts *Opts) (*Dev, error) {
	d, err := makeDev(pins, opts, delay)
	if err != nil {
		return nil, err
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

func makeDev(pins Pins, opts *Opts, wait func(time.Duration)) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	s, err := newSignals(pins, opts.Width, opts.BusyFlag, wait)
	if err != nil {
		return nil, err
	}
	return &Dev{
		opts:          *opts,
		s:             s,
		t:             newTransfer(s, opts),
		lineBase:      opts.lineBase(),
		delay:         wait,
		displayEnable: true,
	}, nil
}

// Halt blanks the screen and turns the display off.
func (d *Dev) Halt() error {
	if err := d.Clear(); err != nil {
		return err
	}
	return d.Display(false)
}

// Clear blanks the display and returns the cursor to the first line.
func (d *Dev) Clear() error {
	return d.settle(CMD_Clear_Display)
}

// Home returns the cursor and any display shift to the first cell.
func (d *Dev) Home() error {
	return d.settle(CMD_Return_Home)
}

// settle sends a slow instruction and waits it out even when the busy flag is
// available.
func (d *Dev) settle(cmd byte) error {
	if err := d.Cmd(cmd); err != nil {
		return err
	}
	d.line = 0
	d.delay(DelayClear)
	return nil
}

// Goto moves the cursor to column x of line y. Lines past the last one select
// the last line; x is not checked.
func (d *Dev) Goto(x, y uint8) error {
	if y >= d.opts.Lines {
		y = d.opts.Lines - 1
	}
	return d.Cmd(CMD_DDRAM_Set | (d.lineBase[y]+x)&0x7f)
}

// Line returns the line the next newline advances from.
func (d *Dev) Line() int {
	return int(d.line)
}

func (d *Dev) newline() error {
	d.line = (d.line + 1) % d.opts.Lines
	return d.Goto(0, d.line)
}

// PutChar writes c at the cursor. '\f' clears the display and '\n' moves to
// the start of the next line, wrapping after the last.
func (d *Dev) PutChar(c byte) error {
	switch c {
	case '\f':
		return d.Clear()
	case '\n':
		return d.newline()
	default:
		return d.Data(c)
	}
}

// PutString writes s through PutChar up to the first NUL byte.
func (d *Dev) PutString(s string) error {
	for i := 0; i < len(s) && s[i] != 0; i++ {
		if err := d.PutChar(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// Cmd sends b to the instruction register as is.
func (d *Dev) Cmd(b byte) error {
	if err := d.t.writeByte(b, false); err != nil {
		return fmt.Errorf("hd44780: command %#02x: %w", b, err)
	}
	return nil
}

// Data sends b to the data register as is.
func (d *Dev) Data(b byte) error {
	if err := d.t.writeByte(b, true); err != nil {
		return fmt.Errorf("hd44780: data %#02x: %w", b, err)
	}
	return nil
}

// Write implements io.Writer with PutChar semantics for every byte,
// including NUL.
func (d *Dev) Write(buf []byte) (int, error) {
	for i, c := range buf {
		if err := d.PutChar(c); err != nil {
			return i, err
		}
	}
	return len(buf), nil
}

func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

func (d *Dev) Rows() int {
	return int(d.opts.Lines)
}

func (d *Dev) Cols() int {
	return int(d.opts.Cols)
}

func (d *Dev) MinRow() int {
	return 0
}

func (d *Dev) MinCol() int {
	return 0
}

// MoveTo moves the cursor to a visible cell.
func (d *Dev) MoveTo(row, col int) error {
	if row < d.MinRow() || row >= d.Rows() || col < d.MinCol() || col >= d.Cols() {
		return fmt.Errorf("hd44780: MoveTo(%d,%d) value out of range", row, col)
	}
	return d.Goto(uint8(col), uint8(row))
}

// Move shifts the cursor one cell along the line.
func (d *Dev) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Forward:
		return d.Cmd(Move_Cursor_Right)
	case display.Backward:
		return d.Cmd(Move_Cursor_Left)
	default:
		return fmt.Errorf("hd44780: %w", display.ErrNotImplemented)
	}
}

// DisplayShift scrolls the whole display one cell.
func (d *Dev) DisplayShift(right bool) error {
	if right {
		return d.Cmd(Move_Disp_Right)
	}
	return d.Cmd(Move_Disp_Left)
}

// AutoScroll shifts the display on every write instead of the cursor.
func (d *Dev) AutoScroll(enabled bool) error {
	d.autoScroll = enabled
	return d.writeEntryMode()
}

// Cursor sets the cursor mode. CursorOff clears any mode before it.
func (d *Dev) Cursor(modes ...display.CursorMode) error {
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			d.cursor = false
			d.blink = false
		case display.CursorUnderline:
			d.cursor = true
		case display.CursorBlock, display.CursorBlink:
			d.blink = true
		default:
			return fmt.Errorf("hd44780: unexpected cursor: %d", mode)
		}
	}
	return d.writeDisplaySwitch()
}

// Display turns the display on or off, keeping the cursor mode.
func (d *Dev) Display(on bool) error {
	d.displayEnable = on
	return d.writeDisplaySwitch()
}

func (d *Dev) writeDisplaySwitch() error {
	option := byte(CMD_Display_Control)
	if d.displayEnable {
		option = option | OPT_Enable_Display
	}
	if d.cursor {
		option = option | OPT_Enable_Cursor
	}
	if d.blink {
		option = option | OPT_Enable_Blink
	}
	log.Debugf("Writing display switch %x", option)
	return d.Cmd(option)
}

func (d *Dev) writeEntryMode() error {
	option := byte(Entry_Inc)
	if d.autoScroll {
		option = option | OPT_Entry_Shift
	}
	return d.Cmd(option)
}

var _ display.TextDisplay = &Dev{}
var _ conn.Resource = &Dev{}
