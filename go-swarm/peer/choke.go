package peer

import (
	"sort"

	"github.com/Charana123/swarm/go-swarm/history"
	"github.com/Charana123/swarm/go-swarm/piece"
	"github.com/Charana123/swarm/go-swarm/stats"
	"github.com/Charana123/swarm/go-swarm/wire"
)

const (
	DOWNLOADERS = 4
)

// std is the reference tit-for-tat client: rarest-first requests, and each
// round it unchokes the DOWNLOADERS-1 requesters that uploaded the most to
// it recently plus one optimistic unchoke.
type std struct {
	base
}

func NewStd(p Params) Strategy {
	return &std{base: newBase(p)}
}

func (s *std) Requests(pieces piece.Blocks, peers []wire.PeerInfo, hist history.AgentHistory) []wire.Request {
	return s.requestRarest(pieces, peers)
}

type requesterInfo struct {
	id            string
	speed         float64
	shouldUnchoke bool
}

func sortBySpeed(infos []*requesterInfo) {
	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].speed > infos[j].speed
	})
}

func (s *std) Uploads(requests []wire.Request, peers []wire.PeerInfo, hist history.AgentHistory) []wire.Upload {
	ids := requesters(requests)
	if len(ids) == 0 {
		return []wire.Upload{}
	}
	peerStats := stats.PeerStats(hist, stats.PONDERATION_TIME)

	infos := []*requesterInfo{}
	for _, id := range ids {
		info := &requesterInfo{id: id}
		if peerStat, ok := peerStats[id]; ok {
			info.speed = peerStat.DownloadRate
		}
		infos = append(infos, info)
	}
	// random order among equally fast requesters
	s.rng.Shuffle(len(infos), func(i, j int) {
		infos[i], infos[j] = infos[j], infos[i]
	})
	sortBySpeed(infos)

	// reciprocate with the fastest uploaders that gave us anything
	for i := 0; i < len(infos) && i < DOWNLOADERS-1; i++ {
		if infos[i].speed > 0 {
			infos[i].shouldUnchoke = true
		}
	}

	// optimistically unchoke one more
	choked := []*requesterInfo{}
	for _, info := range infos {
		if !info.shouldUnchoke {
			choked = append(choked, info)
		}
	}
	if len(choked) > 0 {
		choked[s.rng.Intn(len(choked))].shouldUnchoke = true
	}

	unchoked := []string{}
	for _, info := range infos {
		if info.shouldUnchoke {
			unchoked = append(unchoked, info.id)
		}
	}
	return s.uploadsTo(unchoked, stats.EvenSplit(s.upBW, len(unchoked)))
}
