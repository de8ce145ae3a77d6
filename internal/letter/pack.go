package letter

// Packed layout of a letter in one 32-bit word:
//
//	bits 0-7   base key
//	bit  8     upper case
//	bits 9-11  tone
//	bit  12    circumflex
//	bit  13    horn
//	bit  14    standalone
const (
	packUpper      = 1 << 8
	packToneShift  = 9
	packToneMask   = 0x7 << packToneShift
	packCircumflex = 1 << 12
	packHorn       = 1 << 13
	packStandalone = 1 << 14
)

// Pack encodes l into its 32-bit form.
func (l Letter) Pack() uint32 {
	v := uint32(l.Base) | uint32(l.Tone)<<packToneShift&packToneMask
	if l.Upper {
		v |= packUpper
	}
	if l.Circumflex {
		v |= packCircumflex
	}
	if l.Horn {
		v |= packHorn
	}
	if l.Standalone {
		v |= packStandalone
	}
	return v
}

// Unpack decodes a value produced by Pack.
func Unpack(v uint32) Letter {
	return Letter{
		Base:       byte(v),
		Upper:      v&packUpper != 0,
		Tone:       Tone(v & packToneMask >> packToneShift),
		Circumflex: v&packCircumflex != 0,
		Horn:       v&packHorn != 0,
		Standalone: v&packStandalone != 0,
	}
}

// PackAll encodes a word.
func PackAll(letters []Letter) []uint32 {
	out := make([]uint32, len(letters))
	for i, l := range letters {
		out[i] = l.Pack()
	}
	return out
}

// UnpackAll decodes a word produced by PackAll.
func UnpackAll(packed []uint32) []Letter {
	out := make([]Letter, len(packed))
	for i, v := range packed {
		out[i] = Unpack(v)
	}
	return out
}
