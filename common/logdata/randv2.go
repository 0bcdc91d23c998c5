package logdata

import (
	"encoding/binary"
	randv2 "math/rand/v2"
)

// Source is a seedable random source built on math/rand/v2.
// The ChaCha8 stream doubles as an io.Reader for ID generation.
// A Source is not safe for concurrent use.
type Source struct {
	stream *randv2.ChaCha8
	rng    *randv2.Rand
}

// NewSource creates a Source. A zero seed picks a random one.
func NewSource(seed int64) *Source {
	var key [32]byte
	if seed == 0 {
		for i := 0; i < len(key); i += 8 {
			binary.LittleEndian.PutUint64(key[i:], randv2.Uint64())
		}
	} else {
		binary.LittleEndian.PutUint64(key[:8], uint64(seed))
	}

	stream := randv2.NewChaCha8(key)
	return &Source{
		stream: stream,
		rng:    randv2.New(stream),
	}
}

// Read fills p with random bytes. It never returns an error.
func (s *Source) Read(p []byte) (int, error) {
	return s.stream.Read(p)
}

// RandomIntn returns a random number in [0,n)
func (s *Source) RandomIntn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rng.IntN(n) // IntN in v2, not Intn
}

// RandomRange returns a random number in [min,max]
func (s *Source) RandomRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.rng.IntN(max-min+1)
}

// RandomFloat64 returns a random float64 in [0.0,1.0)
func (s *Source) RandomFloat64() float64 {
	return s.rng.Float64()
}
