package hash

import (
	"encoding/binary"

	metro "github.com/dgryski/go-metro"
)

// golden is the 64-bit golden ratio increment used to spread derived seeds.
const golden = 0x9E3779B97F4A7C15

// Key returns the seeded 64-bit hash of key.
func Key(seed, key uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return metro.Hash64(buf[:], seed)
}

// Unit maps the seeded hash of key to a uniform variate in the open interval (0, 1).
func Unit(seed, key uint64) float64 {
	return ToUnit(Key(seed, key))
}

// ToUnit maps a 64-bit hash to (0, 1) using its top 53 bits.
func ToUnit(h uint64) float64 {
	return (float64(h>>11) + 0.5) / (1 << 53)
}

// Sign returns +1 or -1 depending on the lowest bit of the seeded hash of key.
func Sign(seed, key uint64) float64 {
	if Key(seed, key)&1 == 0 {
		return 1
	}
	return -1
}

// Derive returns the seed of the i-th independent hash function of a family.
func Derive(seed uint64, i int) uint64 {
	return Mix(seed + golden*uint64(i+1))
}

// Mix is the SplitMix64 finalizer. It turns one hash into further independent
// looking bits without another pass over the key.
func Mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Stream returns the n-th variate of the stream seeded by h.
func Stream(h uint64, n int) uint64 {
	return Mix(h + golden*uint64(n+1))
}
