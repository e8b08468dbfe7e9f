package peer

import (
	"github.com/Charana123/swarm/go-swarm/history"
	"github.com/Charana123/swarm/go-swarm/piece"
	"github.com/Charana123/swarm/go-swarm/stats"
	"github.com/Charana123/swarm/go-swarm/wire"
)

const (
	PROPSHARE_RECIPROCAL = 0.9
)

// propShare splits PROPSHARE_RECIPROCAL of its bandwidth among last round's
// uploaders in proportion to what each sent, and the rest to one random
// requester that sent nothing.
type propShare struct {
	base
}

func NewPropShare(p Params) Strategy {
	return &propShare{base: newBase(p)}
}

func (ps *propShare) Requests(pieces piece.Blocks, peers []wire.PeerInfo, hist history.AgentHistory) []wire.Request {
	return ps.requestRarest(pieces, peers)
}

func (ps *propShare) Uploads(requests []wire.Request, peers []wire.PeerInfo, hist history.AgentHistory) []wire.Upload {
	ids := requesters(requests)
	if len(ids) == 0 {
		return []wire.Upload{}
	}
	received := stats.ReceivedFrom(hist, hist.LastRound())

	total := 0
	reciprocate := []string{}
	others := []string{}
	for _, id := range ids {
		if received[id] > 0 {
			reciprocate = append(reciprocate, id)
			total += received[id]
		} else {
			others = append(others, id)
		}
	}

	chosen := []string{}
	bws := []int{}
	used := 0
	for _, id := range reciprocate {
		bw := int(PROPSHARE_RECIPROCAL * float64(ps.upBW) * float64(received[id]) / float64(total))
		chosen = append(chosen, id)
		bws = append(bws, bw)
		used += bw
	}

	left := ps.upBW - used
	if left > 0 {
		if len(others) > 0 {
			chosen = append(chosen, others[ps.rng.Intn(len(others))])
			bws = append(bws, left)
		} else {
			bws[0] += left
		}
	}
	return ps.uploadsTo(chosen, bws)
}
