package chip8

import "errors"

// RunInstructions executes up to budget instructions and returns how many
// ran. It stops early when a key wait begins, and, with HaltBeforeDraw set,
// before a Dxyn once at least one instruction has run this call, so a draw
// always starts a frame. Faults do not stop execution; they are joined and
// returned.
func (m *Machine) RunInstructions(budget int) (int, error) {
	var errs []error
	n := 0
	for n < budget && !m.KeyWaiting {
		if m.quirks.HaltBeforeDraw && n > 0 && m.nextIsDraw() {
			break
		}
		if err := m.Step(); err != nil {
			errs = append(errs, err)
		}
		n++
	}
	return n, errors.Join(errs...)
}

func (m *Machine) nextIsDraw() bool {
	if int(m.PC) >= MemorySize {
		return false
	}
	return m.Memory[m.PC]>>4 == 0xD
}

// Frame runs one 60 Hz frame: sample the keypad, then either service a
// pending key wait or run up to InstructionsPerFrame instructions, then tick
// the timers. Timers tick even while waiting for a key.
func (m *Machine) Frame() error {
	edges := m.tracker.Update(m.keypad)

	var err error
	if m.KeyWaiting {
		m.ServiceKeyWait(edges)
	} else {
		_, err = m.RunInstructions(m.instructionsPerFrame)
	}

	m.Tick()
	m.frames++
	return err
}

// RunFrames runs count frames back to back, for headless use.
func (m *Machine) RunFrames(count int) error {
	var errs []error
	for range count {
		if err := m.Frame(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
