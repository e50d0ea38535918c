package match

import (
	"crypto/rand"
	"encoding/binary"
	"os"
	"time"
)

// SeedStream is a splitmix64 sequence; one base seed fixes every hand of a match.
type SeedStream struct{ state uint64 }

func NewSeedStream(base uint64) SeedStream { return SeedStream{state: base} }

func (s *SeedStream) Next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	return z
}

func SecureBaseSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return binary.LittleEndian.Uint64(b[:]) ^ uint64(time.Now().UnixNano()) ^ uint64(os.Getpid())
	}
	return uint64(time.Now().UnixNano()) ^ 0xA5A5A5A5A5A5A5A5
}
