/*
Copyright 2024 Tim St. Pierre
Byte transfers for the four bus configurations
*/
package hd44780

import (
	"errors"

	log "github.com/sirupsen/logrus"
)

// transfer writes one byte to the instruction (data false) or data register.
type transfer interface {
	writeByte(b byte, data bool) error
}

func newTransfer(s *signals, opts *Opts) transfer {
	busy := byte(1) << opts.BusyBit
	switch {
	case opts.Width == Bus8Bit && opts.BusyFlag:
		return &byteBusy{s: s, busy: busy}
	case opts.Width == Bus8Bit:
		return &byteTimed{s: s}
	case opts.BusyFlag:
		return &nibbleBusy{s: s, busy: busy}
	default:
		return &nibbleTimed{s: s}
	}
}

// byteTimed is an 8-bit bus without R/W: one strobe, then a fixed wait.
type byteTimed struct {
	s *signals
}

func (t *byteTimed) writeByte(b byte, data bool) error {
	if err := writeFull(t.s, b, data); err != nil {
		return err
	}
	t.s.delay(DelayCommand)
	return nil
}

// byteBusy is an 8-bit bus that polls the busy flag before each write.
type byteBusy struct {
	s    *signals
	busy byte
}

func (t *byteBusy) writeByte(b byte, data bool) error {
	err := waitReady(t.s, t.busy, func() (byte, error) {
		if err := t.s.setE(true); err != nil {
			return 0, err
		}
		t.s.delay(PulseWidthEnable)
		x, err := t.s.sample()
		if err != nil {
			return 0, err
		}
		if err := t.s.setE(false); err != nil {
			return 0, err
		}
		t.s.delay(PulseWidthEnable)
		return x, nil
	})
	if err != nil {
		return err
	}
	return writeFull(t.s, b, data)
}

// nibbleTimed is a 4-bit bus without R/W: two strobes, then a fixed wait.
type nibbleTimed struct {
	s *signals
}

func (t *nibbleTimed) writeByte(b byte, data bool) error {
	if err := writeNibbles(t.s, b, data); err != nil {
		return err
	}
	t.s.delay(DelayCommand)
	return nil
}

// nibbleBusy is a 4-bit bus that polls the busy flag, reading the status
// byte as two strobed nibbles, high nibble first.
type nibbleBusy struct {
	s    *signals
	busy byte
}

func (t *nibbleBusy) writeByte(b byte, data bool) error {
	err := waitReady(t.s, t.busy, func() (byte, error) {
		var x byte
		for shift := 4; shift >= 0; shift -= 4 {
			if err := t.s.setE(true); err != nil {
				return 0, err
			}
			t.s.delay(PulseWidthEnable)
			n, err := t.s.readNibble()
			if err != nil {
				return 0, err
			}
			x |= n << shift
			if err := t.s.setE(false); err != nil {
				return 0, err
			}
			t.s.delay(PulseWidthEnable)
		}
		return x, nil
	})
	if err != nil {
		return err
	}
	return writeNibbles(t.s, b, data)
}

func writeFull(s *signals, b byte, data bool) error {
	log.Debugf("Writing %b %x data=%t", b, b, data)
	if err := s.setRS(data); err != nil {
		return err
	}
	if err := s.writeByte(b); err != nil {
		return err
	}
	return s.pulseEnable()
}

func writeNibbles(s *signals, b byte, data bool) error {
	log.Debugf("Writing %b %x data=%t", b, b, data)
	if err := s.setRS(data); err != nil {
		return err
	}
	if err := s.writeHighNibble(b); err != nil {
		return err
	}
	if err := s.pulseEnable(); err != nil {
		return err
	}
	if err := s.writeLowNibble(b); err != nil {
		return err
	}
	return s.pulseEnable()
}

// waitReady turns the bus around to read the status register and samples it
// until the busy bit clears. The bus is always handed back as outputs with
// R/W low. There is no timeout: a display that never clears busy blocks here.
func waitReady(s *signals, busy byte, status func() (byte, error)) (err error) {
	defer func() {
		err = errors.Join(err, s.setE(false), s.dataDirection(true), s.setRW(false))
	}()
	if err = s.dataDirection(false); err != nil {
		return err
	}
	if err = s.setRW(true); err != nil {
		return err
	}
	if err = s.setRS(false); err != nil {
		return err
	}
	for polls := 1; ; polls++ {
		x, serr := status()
		if serr != nil {
			return serr
		}
		if x&busy == 0 {
			log.Debugf("Ready after %d polls, status %x", polls, x)
			return nil
		}
	}
}
