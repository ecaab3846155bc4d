// Package permute provides a keyed pseudorandom permutation of the integer
// domain [0, 2^b) that is evaluated one index at a time, without a stored
// table.
//
// # Construction
//
// A [Set] is sized from a requested universe n by rounding up to the bit width
// b = ceil(log2 n). The permutation is the composition of two Feistel-style
// rounds, each splitting its input into a high half L and a low half R:
//
//	G: L | parity | R
//	H: L | R | parity
//
// Each round computes R' = L xor hash(R), L' = R and recombines the halves.
// When b is odd one bit (the parity bit) is carried through unchanged, and
// the two rounds place it differently so that every bit is mixed by the
// composition. Index(i) = H(G(i)).
//
// Both rounds are invertible, so a full scan of [0, 2^b) visits every value
// exactly once. The domain can be up to twice as large as n; callers that
// need exactly [0, n) must filter or skip.
//
// # Hashing
//
// Round keys are derived from one seed (seed*3 and seed*15) and fed to
// XXH3-64 over the little-endian encoding of R, via [github.com/zeebo/xxh3].
//
// # Usage
//
//	p := permute.New(1<<20, 42)
//	for i := range p.Size() {
//	    v := p.Index(i) // each v in [0, 2^20) appears once
//	    _ = v
//	}
package permute
