package experiment

import "unicode/utf16"

// #region hash

const hashSeed uint32 = 5381

// Hash maps a string to a stable unsigned 32-bit value (djb2, XOR variant).
// Characters are consumed as UTF-16 code units so the same key buckets the
// same way across every host that feeds this service.
//
// Hash is deterministic, not random: anyone who knows the session key can
// predict the bucket. Do not use it where assignment must be unguessable.
func Hash(s string) uint32 {
	h := hashSeed
	for _, r := range s {
		if r < 0x10000 {
			h = (h * 33) ^ uint32(r)
			continue
		}
		hi, lo := utf16.EncodeRune(r)
		h = (h * 33) ^ uint32(hi)
		h = (h * 33) ^ uint32(lo)
	}
	return h
}

// #endregion
