/*
Copyright 2024 Tim St. Pierre
Power-on initialization sequence
*/
package hd44780

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Init runs the datasheet "initialization by instruction" sequence. It is
// safe only from true power-on: a controller already switched to another bus
// width is not recovered.
func (d *Dev) Init() error {
	if err := d.s.configure(); err != nil {
		return fmt.Errorf("hd44780: configure lines: %w", err)
	}
	start := d.startByte
	if d.opts.Width == Bus4Bit {
		start = d.startNibble
	}
	if err := start(); err != nil {
		return fmt.Errorf("hd44780: reset sequence: %w", err)
	}
	log.Infof("Bus locked to %s", d.opts.Width)

	for _, c := range []byte{d.opts.functionSet(), Disp_On, Entry_Inc} {
		if err := d.Cmd(c); err != nil {
			return err
		}
	}
	return d.Clear()
}

// startByte forces an 8-bit bus: function-set 8-bit three times.
func (d *Dev) startByte() error {
	return d.reset(func() error {
		return d.s.writeByte(Function_8Bit_1Line)
	}, nil)
}

// startNibble forces a 4-bit bus: function-set 8-bit three times on the high
// lines, then the 4-bit switch that commits the controller to nibble transfers.
func (d *Dev) startNibble() error {
	return d.reset(func() error {
		return d.s.writeHighNibble(Function_8Bit_1Line)
	}, func() error {
		return d.s.writeHighNibble(Function_4Bit_1Line)
	})
}

// reset issues the triple function-set with its stage delays, followed by the
// optional mode switch nibble.
func (d *Dev) reset(place, commit func() error) error {
	d.delay(DelayPowerOn)
	if err := d.s.setRS(false); err != nil {
		return err
	}
	for _, wait := range []time.Duration{DelayInit2, DelayInit3, DelayCommand} {
		if err := place(); err != nil {
			return err
		}
		if err := d.s.pulseEnable(); err != nil {
			return err
		}
		d.delay(wait)
	}
	if commit == nil {
		return nil
	}
	if err := commit(); err != nil {
		return err
	}
	if err := d.s.pulseEnable(); err != nil {
		return err
	}
	d.delay(DelayCommand)
	return nil
}
