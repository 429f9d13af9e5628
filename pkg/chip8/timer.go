package chip8

// Tick advances both timers by one 60 Hz period and reports the beeper state
// to the sound sink. The beeper is on for every tick that starts with a
// non-zero sound timer, so ST=n beeps for exactly n ticks.
func (m *Machine) Tick() {
	beep := m.ST > 0

	if m.DT > 0 {
		m.DT--
	}
	if m.ST > 0 {
		m.ST--
	}

	m.sound.SetBeep(beep)
}
