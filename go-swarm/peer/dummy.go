package peer

import (
	"github.com/Charana123/swarm/go-swarm/history"
	"github.com/Charana123/swarm/go-swarm/piece"
	"github.com/Charana123/swarm/go-swarm/wire"
)

// dummy asks for random pieces and gives everything to one random requester.
type dummy struct {
	base
}

func NewDummy(p Params) Strategy {
	return &dummy{base: newBase(p)}
}

func (d *dummy) Requests(pieces piece.Blocks, peers []wire.PeerInfo, hist history.AgentHistory) []wire.Request {
	needed := pieces.Needed(d.conf.BlocksPerPiece)
	d.rng.Shuffle(len(needed), func(i, j int) {
		needed[i], needed[j] = needed[j], needed[i]
	})

	sortByID(peers)
	requests := []wire.Request{}
	for _, p := range peers {
		for _, pieceIndex := range piece.Wanted(needed, p, d.maxRequests) {
			requests = append(requests, wire.Request{
				RequesterID: d.id,
				PeerID:      p.ID,
				PieceID:     pieceIndex,
				Start:       pieces[pieceIndex],
			})
		}
	}
	return requests
}

func (d *dummy) Uploads(requests []wire.Request, peers []wire.PeerInfo, hist history.AgentHistory) []wire.Upload {
	if len(requests) == 0 {
		return []wire.Upload{}
	}
	request := requests[d.rng.Intn(len(requests))]
	return d.uploadsTo([]string{request.RequesterID}, []int{d.upBW})
}
