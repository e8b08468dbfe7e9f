package peer

import (
	"math"
	"sort"

	"github.com/Charana123/swarm/go-swarm/history"
	"github.com/Charana123/swarm/go-swarm/piece"
	"github.com/Charana123/swarm/go-swarm/stats"
	"github.com/Charana123/swarm/go-swarm/wire"
	mapset "github.com/deckarep/golang-set"
)

// tyrant is BitTyrant. For every peer it keeps d, the blocks per round we
// expect from it once unchoked, and u, the bandwidth we think it takes to be
// reciprocated. Requesters are served greedily by d/u.
type tyrant struct {
	base
	gamma float64
	alpha float64
	r     int
	// expected unchokes per peer in the first round
	k int
	// give the bandwidth left after the greedy pass to one random requester
	remainder bool

	d map[string]float64
	u map[string]float64
}

func NewTyrant(p Params) Strategy {
	return &tyrant{
		base:  newBase(p),
		gamma: 0.10,
		alpha: 0.20,
		r:     3,
		k:     3,
		d:     make(map[string]float64),
		u:     make(map[string]float64),
	}
}

// NewTourney is the tournament-tuned tyrant: slower decay, four expected
// unchokes and no idle bandwidth.
func NewTourney(p Params) Strategy {
	return &tyrant{
		base:      newBase(p),
		gamma:     0.04,
		alpha:     0.20,
		r:         2,
		k:         4,
		remainder: true,
		d:         make(map[string]float64),
		u:         make(map[string]float64),
	}
}

func (t *tyrant) Requests(pieces piece.Blocks, peers []wire.PeerInfo, hist history.AgentHistory) []wire.Request {
	return t.requestRarest(pieces, peers)
}

func (t *tyrant) initial(peers []wire.PeerInfo) {
	if len(peers) == 0 {
		return
	}
	avgBW := float64(t.conf.MinUpBW+t.conf.MaxUpBW) / 2
	for _, p := range peers {
		if _, ok := t.d[p.ID]; !ok {
			t.d[p.ID] = avgBW / float64(t.k)
			t.u[p.ID] = avgBW / float64(len(peers))
		}
	}
}

// unchokedFor reports whether we uploaded to id in each of the last n rounds.
func unchokedFor(hist history.AgentHistory, id string, n int) bool {
	last := hist.LastRound()
	if last+1 < n {
		return false
	}
	for round := last; round > last-n; round-- {
		found := false
		for _, u := range hist.Uploads(round) {
			if u.ToID == id && u.BW > 0 {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (t *tyrant) update(hist history.AgentHistory) {
	last := hist.LastRound()
	if last < 0 {
		return
	}
	received := stats.ReceivedFrom(hist, last)
	unchoked := mapset.NewThreadUnsafeSet()
	for _, u := range hist.Uploads(last) {
		if u.BW > 0 {
			unchoked.Add(u.ToID)
		}
	}
	unchoked.Each(func(elem interface{}) bool {
		id := elem.(string)
		if _, ok := t.u[id]; !ok {
			return false
		}
		if received[id] == 0 {
			t.u[id] *= 1 + t.alpha
		} else if unchokedFor(hist, id, t.r) {
			t.u[id] *= 1 - t.gamma
		}
		return false
	})
	// anyone who sent us blocks shows us their real rate
	for id, blocks := range received {
		t.d[id] = float64(blocks)
	}
}

func (t *tyrant) Uploads(requests []wire.Request, peers []wire.PeerInfo, hist history.AgentHistory) []wire.Upload {
	t.initial(peers)
	t.update(hist)

	ids := requesters(requests)
	if len(ids) == 0 {
		return []wire.Upload{}
	}
	t.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	ratio := func(id string) float64 {
		u, ok := t.u[id]
		if !ok || u <= 0 {
			return 0
		}
		return t.d[id] / u
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return ratio(ids[i]) > ratio(ids[j])
	})

	left := t.upBW
	chosen := []string{}
	bws := []int{}
	for _, id := range ids {
		bw := int(math.Ceil(t.u[id]))
		if bw < 1 {
			bw = 1
		}
		if bw > left {
			break
		}
		chosen = append(chosen, id)
		bws = append(bws, bw)
		left -= bw
	}

	if t.remainder && left > 0 {
		id := ids[t.rng.Intn(len(ids))]
		added := false
		for i := range chosen {
			if chosen[i] == id {
				bws[i] += left
				added = true
			}
		}
		if !added {
			chosen = append(chosen, id)
			bws = append(bws, left)
		}
	}
	return t.uploadsTo(chosen, bws)
}
