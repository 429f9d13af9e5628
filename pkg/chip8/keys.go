package chip8

// KeyEdges holds the keys that went down and came up between two keypad
// snapshots.
type KeyEdges struct {
	Pressed  [KeyCount]bool
	Released [KeyCount]bool
}

// Any reports whether any edge was seen.
func (e KeyEdges) Any() bool {
	for k := range KeyCount {
		if e.Pressed[k] || e.Released[k] {
			return true
		}
	}
	return false
}

// KeyTracker turns held-key snapshots into press and release edges.
type KeyTracker struct {
	held [KeyCount]bool
}

// Update samples every key on k and returns the edges since the previous
// call. The first call compares against "nothing held".
func (t *KeyTracker) Update(k Keypad) KeyEdges {
	var edges KeyEdges
	for key := range KeyCount {
		down := k.IsKeyDown(byte(key))
		switch {
		case down && !t.held[key]:
			edges.Pressed[key] = true
		case !down && t.held[key]:
			edges.Released[key] = true
		}
		t.held[key] = down
	}
	return edges
}

// Held reports whether key was down at the last Update.
func (t *KeyTracker) Held(key byte) bool {
	return t.held[key&0x0F]
}

func (m *Machine) beginKeyWait(x uint8) {
	m.KeyWaiting = true
	m.KeyTarget = x
	m.KeysObserved = [KeyCount]bool{}
}

// ServiceKeyWait feeds one frame's key edges to a pending Fx0A. A key
// completes the wait only once it has been pressed and then released while
// waiting; its value goes to the target register. If several keys complete
// in the same frame the highest-numbered one wins. It returns true when the
// wait ended.
func (m *Machine) ServiceKeyWait(edges KeyEdges) bool {
	if !m.KeyWaiting {
		return false
	}

	done := false
	for key := range KeyCount {
		if edges.Pressed[key] {
			m.KeysObserved[key] = true
		}
		if edges.Released[key] && m.KeysObserved[key] {
			m.V[m.KeyTarget] = byte(key)
			done = true
		}
	}

	if done {
		m.KeyWaiting = false
		m.KeysObserved = [KeyCount]bool{}
		m.log.Debugf("key wait done: V%X = %X", m.KeyTarget, m.V[m.KeyTarget])
	}
	return done
}
