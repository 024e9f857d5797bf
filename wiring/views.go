package wiring

import "log/slog"

// The views below are handed out by the As* transitions of Pin. Each only
// offers what its mode supports, so none of their methods can fail on a
// mode check. Calling SetMode on the underlying Pin afterwards makes a view
// stale: its methods that change the pin then do nothing but log, and
// Stale reports true.

type view struct {
	pin *Pin
	gen uint64
}

func newView(p *Pin) view { return view{pin: p, gen: p.gen} }

func (v view) Pin() *Pin { return v.pin }

// Stale reports whether the pin's mode was changed after the view was made.
func (v view) Stale() bool { return v.gen != v.pin.gen }

func (v view) usable(op string) bool {
	if v.Stale() {
		slog.Warn("Ignoring call on stale pin view", "op", op, "pin", v.pin.number, "mode", v.pin.mode.String())
		return false
	}
	return true
}

// InputPin is a pin set up as an input.
type InputPin struct{ view }

// OutputPin is a pin set up as a digital output.
type OutputPin struct{ view }

// PwmOutputPin is a pin driven by the PWM generator.
type PwmOutputPin struct{ view }

// ClockPin is a pin driven by a general purpose clock.
type ClockPin struct{ view }

// AsInput sets the pin to Input(r).
func (p *Pin) AsInput(r ResistorMode) (*InputPin, error) {
	if err := p.SetMode(Input(r)); err != nil {
		return nil, err
	}
	return &InputPin{newView(p)}, nil
}

func (p *Pin) AsOutput() (*OutputPin, error) {
	if err := p.SetMode(Output); err != nil {
		return nil, err
	}
	return &OutputPin{newView(p)}, nil
}

func (p *Pin) AsPwmOutput() (*PwmOutputPin, error) {
	if err := p.SetMode(PwmOutput); err != nil {
		return nil, err
	}
	return &PwmOutputPin{newView(p)}, nil
}

func (p *Pin) AsClockOutput() (*ClockPin, error) {
	if err := p.SetMode(ClockOutput); err != nil {
		return nil, err
	}
	return &ClockPin{newView(p)}, nil
}

func (v *InputPin) DigitalRead() Level { return v.pin.DigitalRead() }

func (v *InputPin) AnalogRead() int { return v.pin.AnalogRead() }

func (v *InputPin) SetResistorMode(r ResistorMode) {
	if !v.usable("set_resistor_mode") {
		return
	}
	v.pin.drv.PullUpDnControl(v.pin.number, r.Code())
	v.pin.mode = Input(r)
}

func (v *OutputPin) DigitalWrite(level Level) {
	if !v.usable("digital_write") {
		return
	}
	v.pin.drv.DigitalWrite(v.pin.number, level.Code())
}

func (v *OutputPin) AnalogWrite(value int) {
	if v.usable("analog_write") {
		v.pin.AnalogWrite(value)
	}
}

func (v *PwmOutputPin) PwmWrite(value int) {
	if !v.usable("pwm_write") {
		return
	}
	v.pin.drv.PwmWrite(v.pin.number, value)
}

// SetFrequency sets the clock output in Hz.
func (v *ClockPin) SetFrequency(hz int) {
	if !v.usable("clock_set") {
		return
	}
	v.pin.drv.GpioClockSet(v.pin.number, hz)
}
