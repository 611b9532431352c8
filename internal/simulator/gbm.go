// Package simulator generates geometric Brownian motion sample paths for
// Monte Carlo pricing. Paths are produced in fixed-size chunks, each from an
// independent deterministically-seeded PCG stream, so a path set can be
// generated sequentially or spread across workers with identical results.
package simulator

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

var (
	ErrInvalidSpot   = errors.New("spot must be positive")
	ErrInvalidParams = errors.New("invalid simulation parameters")
)

// ChunkSize is the number of paths per random sub-stream. Even, so
// antithetic pairs never straddle a chunk boundary.
const ChunkSize = 2048

// Params describes one path-set request.
type Params struct {
	Spot       float64
	Sigma      float64
	Rate       float64
	Dt         float64
	Steps      int
	Paths      int
	Antithetic bool
	// Seed makes the path set reproducible bit-for-bit. Nil draws a seed
	// from the system entropy source; zero is a valid explicit seed.
	Seed *uint64
}

// Validate checks the request. Antithetic sets need an even path count so
// every draw has its mirrored partner.
func (p Params) Validate() error {
	if p.Spot <= 0 {
		return ErrInvalidSpot
	}
	if p.Steps <= 0 || p.Paths <= 0 || p.Sigma < 0 || p.Dt <= 0 {
		return ErrInvalidParams
	}
	if p.Antithetic && p.Paths%2 != 0 {
		return ErrInvalidParams
	}
	return nil
}

// ResolveSeed returns the explicit seed, or a fresh one from crypto/rand.
func (p Params) ResolveSeed() uint64 {
	if p.Seed != nil {
		return *p.Seed
	}
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Chunks returns the number of sub-streams the path set is split into.
func (p Params) Chunks() int {
	return (p.Paths + ChunkSize - 1) / ChunkSize
}

// chunkPaths returns how many paths chunk idx holds.
func (p Params) chunkPaths(idx int) int {
	remaining := p.Paths - idx*ChunkSize
	if remaining > ChunkSize {
		return ChunkSize
	}
	return remaining
}

// RunChunk generates every path of chunk idx and passes each to fn. The
// buffer handed to fn is reused between calls; callers that keep a path must
// copy it. Chunk idx always draws from rand.NewPCG(seed, idx), so chunks may
// run on any worker in any order and still reproduce the same path set.
func RunChunk(p Params, seed uint64, idx int, fn func(path []float64)) {
	rng := rand.New(rand.NewPCG(seed, uint64(idx)))

	driftTerm := (p.Rate - 0.5*p.Sigma*p.Sigma) * p.Dt
	volTerm := p.Sigma * math.Sqrt(p.Dt)

	count := p.chunkPaths(idx)
	buf := make([]float64, p.Steps+1)

	if !p.Antithetic {
		for range count {
			buf[0] = p.Spot
			for k := 1; k <= p.Steps; k++ {
				buf[k] = buf[k-1] * math.Exp(driftTerm+volTerm*rng.NormFloat64())
			}
			fn(buf)
		}
		return
	}

	// Antithetic pairs share draws: the second member uses -Z for every Z of
	// the first. The drift term is common to both, only the diffusion flips.
	draws := make([]float64, p.Steps)
	for pair := 0; pair < count/2; pair++ {
		buf[0] = p.Spot
		for k := 1; k <= p.Steps; k++ {
			draws[k-1] = rng.NormFloat64()
			buf[k] = buf[k-1] * math.Exp(driftTerm+volTerm*draws[k-1])
		}
		fn(buf)

		buf[0] = p.Spot
		for k := 1; k <= p.Steps; k++ {
			buf[k] = buf[k-1] * math.Exp(driftTerm-volTerm*draws[k-1])
		}
		fn(buf)
	}
}

// Simulate generates the full path set in memory. Each path has Steps+1
// prices starting at Spot; antithetic pairs are adjacent. Prefer RunChunk
// when only per-path aggregates are needed.
func Simulate(p Params) ([][]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	seed := p.ResolveSeed()

	paths := make([][]float64, 0, p.Paths)
	for idx := 0; idx < p.Chunks(); idx++ {
		RunChunk(p, seed, idx, func(path []float64) {
			owned := make([]float64, len(path))
			copy(owned, path)
			paths = append(paths, owned)
		})
	}
	return paths, nil
}
