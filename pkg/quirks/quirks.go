// Package quirks holds the behavioural switches on which historical CHIP-8
// interpreters disagree. A Quirks value is chosen once per run and never
// changes while a program executes.
package quirks

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Quirks selects one variant for each contested behaviour.
type Quirks struct {
	// VFResetOnLogic forces VF to 0 after 8xy1, 8xy2 and 8xy3.
	VFResetOnLogic bool `toml:"vf_reset_on_logic"`
	// MemoryIncrementsI advances I by x+1 after Fx55 and Fx65.
	MemoryIncrementsI bool `toml:"memory_increments_i"`
	// HaltBeforeDraw ends a frame's instruction burst just before a Dxyn
	// unless it is the first instruction of that frame.
	HaltBeforeDraw bool `toml:"halt_before_draw"`
	// ClipSprites drops sprite pixels past the screen edge instead of
	// wrapping them.
	ClipSprites bool `toml:"clip_sprites"`
	// ShiftUsesVY copies Vy into Vx before 8xy6 and 8xyE shift.
	ShiftUsesVY bool `toml:"shift_uses_vy"`
	// JumpUsesVX makes Bnnn add Vx (x = high nibble of nnn) instead of V0.
	JumpUsesVX bool `toml:"jump_uses_vx"`
}

// Profile names.
const (
	CHIP8  = "chip8"
	SCHIP  = "schip"
	XOCHIP = "xochip"
)

var ErrUnknownProfile = errors.New("unknown quirk profile")

var profiles = map[string]Quirks{
	// COSMAC VIP behaviour, the interpreter's default set.
	CHIP8: {
		VFResetOnLogic:    true,
		MemoryIncrementsI: true,
		HaltBeforeDraw:    true,
		ClipSprites:       true,
		ShiftUsesVY:       true,
		JumpUsesVX:        false,
	},
	SCHIP: {
		VFResetOnLogic:    false,
		MemoryIncrementsI: false,
		HaltBeforeDraw:    false,
		ClipSprites:       true,
		ShiftUsesVY:       false,
		JumpUsesVX:        true,
	},
	XOCHIP: {
		VFResetOnLogic:    false,
		MemoryIncrementsI: true,
		HaltBeforeDraw:    false,
		ClipSprites:       false,
		ShiftUsesVY:       true,
		JumpUsesVX:        false,
	},
}

// Default returns the chip8 profile.
func Default() Quirks {
	return profiles[CHIP8]
}

// Lookup returns the named profile. Names are case-insensitive.
func Lookup(name string) (Quirks, error) {
	q, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Quirks{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownProfile, name, strings.Join(Names(), ", "))
	}
	return q, nil
}

// Names lists the known profile names in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String renders the enabled switches, e.g. "vf_reset_on_logic,clip_sprites".
func (q Quirks) String() string {
	var on []string
	for _, f := range q.fields() {
		if f.value {
			on = append(on, f.name)
		}
	}
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ",")
}

type field struct {
	name  string
	value bool
}

func (q Quirks) fields() []field {
	return []field{
		{"vf_reset_on_logic", q.VFResetOnLogic},
		{"memory_increments_i", q.MemoryIncrementsI},
		{"halt_before_draw", q.HaltBeforeDraw},
		{"clip_sprites", q.ClipSprites},
		{"shift_uses_vy", q.ShiftUsesVY},
		{"jump_uses_vx", q.JumpUsesVX},
	}
}

// Overrides holds optional per-switch replacements for a profile. A nil
// field keeps the profile's value.
type Overrides struct {
	VFResetOnLogic    *bool `toml:"vf_reset_on_logic"`
	MemoryIncrementsI *bool `toml:"memory_increments_i"`
	HaltBeforeDraw    *bool `toml:"halt_before_draw"`
	ClipSprites       *bool `toml:"clip_sprites"`
	ShiftUsesVY       *bool `toml:"shift_uses_vy"`
	JumpUsesVX        *bool `toml:"jump_uses_vx"`
}

// Apply returns a copy of q with every non-nil override applied.
func (o Overrides) Apply(q Quirks) Quirks {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&q.VFResetOnLogic, o.VFResetOnLogic)
	set(&q.MemoryIncrementsI, o.MemoryIncrementsI)
	set(&q.HaltBeforeDraw, o.HaltBeforeDraw)
	set(&q.ClipSprites, o.ClipSprites)
	set(&q.ShiftUsesVY, o.ShiftUsesVY)
	set(&q.JumpUsesVX, o.JumpUsesVX)
	return q
}
