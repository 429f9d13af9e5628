package chip8

import "errors"

// draw XORs an n-row sprite from memory at I onto the screen at (Vx, Vy) and
// sets VF when any lit pixel is turned off.
//
// The origin always wraps. Pixels past the right or bottom edge are dropped
// when ClipSprites is set and wrap around otherwise.
func (m *Machine) draw(x, y, n uint8) error {
	var errs []error
	collision := false

	addr := int(m.I)
	yy := int(m.V[y]) % ScreenHeight
	for rows := int(n); rows > 0 && yy < ScreenHeight; rows-- {
		row, err := m.ReadByte(addr)
		if err != nil {
			errs = append(errs, err)
		}

		xx := int(m.V[x]) % ScreenWidth
		for bit := 0; bit < 8 && xx < ScreenWidth; bit++ {
			on := row&(0x80>>bit) != 0
			lit := m.display.Pixel(xx, yy)
			if on && lit {
				collision = true
			}
			m.display.SetPixel(xx, yy, on != lit)

			if m.quirks.ClipSprites {
				xx++
			} else {
				xx = (xx + 1) % ScreenWidth
			}
		}

		addr++
		if m.quirks.ClipSprites {
			yy++
		} else {
			yy = (yy + 1) % ScreenHeight
		}
	}

	m.V[VF] = flag(collision)
	return errors.Join(errs...)
}
