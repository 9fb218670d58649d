/*
Copyright 2024 Tim St. Pierre
*/
package hd44780

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSequence(t *testing.T) {
	tests := []struct {
		name     string
		width    BusWidth
		busy     bool
		reset    []byte // data port image of each reset strobe
		function byte
		waits    []time.Duration
	}{
		{
			name:     "8bit timed",
			width:    Bus8Bit,
			reset:    []byte{0x30, 0x30, 0x30},
			function: 0x38,
			waits: []time.Duration{
				DelayPowerOn, DelayInit2, DelayInit3, DelayCommand,
				DelayCommand, DelayCommand, DelayCommand, DelayCommand, DelayClear,
			},
		},
		{
			name:     "8bit busy",
			width:    Bus8Bit,
			busy:     true,
			reset:    []byte{0x30, 0x30, 0x30},
			function: 0x38,
			waits:    []time.Duration{DelayPowerOn, DelayInit2, DelayInit3, DelayCommand, DelayClear},
		},
		{
			name:     "4bit timed",
			width:    Bus4Bit,
			reset:    []byte{0x30, 0x30, 0x30, 0x20},
			function: 0x28,
			waits: []time.Duration{
				DelayPowerOn, DelayInit2, DelayInit3, DelayCommand, DelayCommand,
				DelayCommand, DelayCommand, DelayCommand, DelayCommand, DelayClear,
			},
		},
		{
			name:     "4bit busy",
			width:    Bus4Bit,
			busy:     true,
			reset:    []byte{0x30, 0x30, 0x30, 0x20},
			function: 0x28,
			waits:    []time.Duration{DelayPowerOn, DelayInit2, DelayInit3, DelayCommand, DelayCommand, DelayClear},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, b := newTestDev(t, modeOpts(tt.width, tt.busy))
			d.line = 1
			require.NoError(t, d.Init())

			ws := b.writeStrobes()
			require.Greater(t, len(ws), len(tt.reset))
			for i, want := range tt.reset {
				assert.Equal(t, want, ws[i].data, "reset strobe %d", i)
				assert.False(t, ws[i].rs, "reset strobe %d", i)
			}
			// no status read until the bus width is settled
			for i := range tt.reset {
				assert.False(t, b.strobes[i].rw, "strobe %d", i)
			}
			if tt.busy {
				assert.Positive(t, b.readStrobes())
			} else {
				assert.Zero(t, b.readStrobes())
			}

			got := decode(t, ws[len(tt.reset):], tt.width)
			assert.Equal(t, []xfer{
				{tt.function, false},
				{Disp_On, false},
				{Entry_Inc, false},
				{CMD_Clear_Display, false},
			}, got)
			assert.Equal(t, tt.waits, b.waits())
			assert.Equal(t, 0, d.Line())
		})
	}
}

func TestInitConfiguresLines(t *testing.T) {
	b, pins := newFakeBus(Bus8Bit)
	b.data.dir = 0
	b.ctrl.dir = 0
	b.ctrl.level = 1<<ctrlRW | 1<<ctrlE
	d, err := makeDev(pins, &Opts{Lines: 2, Cols: 16, Width: Bus8Bit, BusyFlag: true, BusyBit: 7}, b.wait)
	require.NoError(t, err)

	require.NoError(t, d.Init())
	assert.Equal(t, byte(0xff), b.data.dir)
	assert.Equal(t, byte(1<<ctrlRS|1<<ctrlE|1<<ctrlRW), b.ctrl.dir)
	assert.Zero(t, b.ctrl.level&(1<<ctrlRW|1<<ctrlE))
}

func TestFunctionSetOptions(t *testing.T) {
	tests := []struct {
		opts Opts
		want byte
	}{
		{Opts{Width: Bus4Bit, Lines: 1}, Function_4Bit_1Line},
		{Opts{Width: Bus4Bit, Lines: 2}, Function_4Bit_2Lines},
		{Opts{Width: Bus8Bit, Lines: 1}, Function_8Bit_1Line},
		{Opts{Width: Bus8Bit, Lines: 4}, Function_8Bit_2Lines},
		{Opts{Width: Bus4Bit, Lines: 1, Font5x10: true}, 0x24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.opts.functionSet(), "%+v", tt.opts)
	}
}
