package peer

import (
	"github.com/Charana123/swarm/go-swarm/history"
	"github.com/Charana123/swarm/go-swarm/piece"
	"github.com/Charana123/swarm/go-swarm/stats"
	"github.com/Charana123/swarm/go-swarm/wire"
)

const (
	SEED_MAX_UPLOADS = 4
)

type seed struct {
	base
}

func NewSeed(p Params) Strategy {
	return &seed{base: newBase(p)}
}

// Seeds have everything.
func (s *seed) Requests(pieces piece.Blocks, peers []wire.PeerInfo, hist history.AgentHistory) []wire.Request {
	return []wire.Request{}
}

// Uploads splits bandwidth evenly between up to SEED_MAX_UPLOADS random
// requesters.
func (s *seed) Uploads(requests []wire.Request, peers []wire.PeerInfo, hist history.AgentHistory) []wire.Upload {
	ids := requesters(requests)
	n := len(ids)
	if n > SEED_MAX_UPLOADS {
		n = SEED_MAX_UPLOADS
	}
	if n == 0 {
		return []wire.Upload{}
	}
	s.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	return s.uploadsTo(ids[:n], stats.EvenSplit(s.upBW, n))
}
