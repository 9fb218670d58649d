/*
Copyright 2024 Tim St. Pierre
*/
package hd44780

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func testPins(n int) []*gpiotest.Pin {
	pins := make([]*gpiotest.Pin, n)
	for i := range pins {
		pins[i] = &gpiotest.Pin{N: "GPIO", Num: i}
	}
	return pins
}

func asPinIO(pins []*gpiotest.Pin) []gpio.PinIO {
	out := make([]gpio.PinIO, len(pins))
	for i, p := range pins {
		out[i] = p
	}
	return out
}

func TestGPIOPortOut(t *testing.T) {
	pins := testPins(3)
	p, err := NewGPIOPort(asPinIO(pins)...)
	require.NoError(t, err)

	require.NoError(t, p.Out(0x05, 0xff))
	assert.Equal(t, gpio.High, pins[0].L)
	assert.Equal(t, gpio.Low, pins[1].L, "bit outside the mask is untouched")
	assert.Equal(t, gpio.High, pins[2].L)

	require.NoError(t, p.Out(0x01, 0x00))
	assert.Equal(t, gpio.Low, pins[0].L)
	assert.Equal(t, gpio.High, pins[2].L)
	// bits past the last pin are ignored
	require.NoError(t, p.Out(0xf8, 0xf8))
}

func TestGPIOPortIn(t *testing.T) {
	pins := testPins(4)
	p, err := NewGPIOPort(asPinIO(pins)...)
	require.NoError(t, err)

	pins[1].L = gpio.High
	pins[3].L = gpio.High
	v, err := p.In()
	require.NoError(t, err)
	assert.Equal(t, byte(0x0a), v)
}

func TestGPIOPortDirection(t *testing.T) {
	pins := testPins(2)
	p, err := NewGPIOPort(asPinIO(pins)...)
	require.NoError(t, err)

	require.NoError(t, p.Out(0x03, 0x02))
	require.NoError(t, p.Direction(0x03, false))
	assert.Equal(t, gpio.PullNoChange, pins[0].P)

	// an external driver pulls pin 0 high while it is an input
	pins[0].L = gpio.High
	require.NoError(t, p.Direction(0x03, true))
	assert.Equal(t, gpio.Low, pins[0].L, "outputs restore the last driven level")
	assert.Equal(t, gpio.High, pins[1].L)
}

func TestNewGPIOPortTooManyPins(t *testing.T) {
	_, err := NewGPIOPort(asPinIO(testPins(9))...)
	assert.Error(t, err)
}

func TestGPIOPins(t *testing.T) {
	ctrl := testPins(3)
	data := testPins(4)
	pins, err := GPIOPins(ctrl[0], ctrl[1], ctrl[2], asPinIO(data)...)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		assert.False(t, pins.Data[i].bound(), "D%d", i)
		assert.Equal(t, uint8(i), pins.Data[4+i].Bit)
	}
	assert.True(t, pins.RW.bound())

	s, err := newSignals(pins, Bus4Bit, true, func(time.Duration) {})
	require.NoError(t, err)
	require.NoError(t, s.writeHighNibble(0x50))
	assert.Equal(t, []gpio.Level{gpio.High, gpio.Low, gpio.High, gpio.Low},
		[]gpio.Level{data[0].L, data[1].L, data[2].L, data[3].L}, "D4..D7")
	require.NoError(t, s.setE(true))
	assert.Equal(t, gpio.High, ctrl[1].L)
	require.NoError(t, s.setRS(true))
	assert.Equal(t, gpio.High, ctrl[0].L)
}

func TestGPIOPinsErrors(t *testing.T) {
	ctrl := testPins(3)
	_, err := GPIOPins(ctrl[0], ctrl[1], nil, asPinIO(testPins(5))...)
	assert.Error(t, err, "5 data pins")
	_, err = GPIOPins(nil, ctrl[1], nil, asPinIO(testPins(4))...)
	assert.Error(t, err, "no RS")

	pins, err := GPIOPins(ctrl[0], ctrl[1], nil, asPinIO(testPins(8))...)
	require.NoError(t, err)
	assert.False(t, pins.RW.bound())
	assert.True(t, pins.Data[0].bound())
	_, err = newSignals(pins, Bus8Bit, true, func(time.Duration) {})
	assert.Error(t, err, "busy flag without RW")
}
