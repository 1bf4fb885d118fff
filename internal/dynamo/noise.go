package dynamo

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

func standardNormal(src rand.Source) distuv.Normal {
	return distuv.Normal{Mu: 0, Sigma: 1, Src: src}
}

func (s Scalar) NormalLike(src rand.Source) Value {
	n := standardNormal(src)
	return Scalar(n.Rand())
}

func (a Array) NormalLike(src rand.Source) Value {
	n := standardNormal(src)
	out := make(Array, len(a))
	for i := range out {
		out[i] = n.Rand()
	}
	return out
}

// NewSource returns the deterministic source used for a seeded run. Stream
// separates sources sharing a seed, e.g. one per ensemble member.
func NewSource(seed int64, stream uint64) rand.Source {
	return rand.NewPCG(uint64(seed), stream)
}
