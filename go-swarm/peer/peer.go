package peer

import (
	"math/rand"
	"sort"

	"github.com/Charana123/swarm/go-swarm/config"
	"github.com/Charana123/swarm/go-swarm/history"
	"github.com/Charana123/swarm/go-swarm/piece"
	"github.com/Charana123/swarm/go-swarm/wire"
	mapset "github.com/deckarep/golang-set"
)

// Strategy decides, once per round, what a peer asks for and whom it serves.
// Everything a strategy is given is its own copy; the engine validates what
// it returns.
type Strategy interface {
	// Requests is called with the peer's current piece state.
	Requests(pieces piece.Blocks, peers []wire.PeerInfo, hist history.AgentHistory) []wire.Request
	// Uploads is called after every peer's requests for the round are known,
	// with the ones addressed to this peer.
	Uploads(requests []wire.Request, peers []wire.PeerInfo, hist history.AgentHistory) []wire.Upload
}

// Params is what a strategy is constructed with.
type Params struct {
	Conf   config.Params
	ID     string
	Pieces piece.Blocks
	UpBW   int
	Rand   *rand.Rand
}

// Constructor builds a strategy for one peer.
type Constructor func(p Params) Strategy

type base struct {
	conf        config.Params
	id          string
	upBW        int
	rng         *rand.Rand
	maxRequests int
}

func newBase(p Params) base {
	// upper bound on what one peer can serve us in a round
	maxRequests := p.Conf.MaxUpBW/p.Conf.BlocksPerPiece + 1
	if maxRequests > p.Conf.NumPieces {
		maxRequests = p.Conf.NumPieces
	}
	rng := p.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}
	return base{
		conf:        p.Conf,
		id:          p.ID,
		upBW:        p.UpBW,
		rng:         rng,
		maxRequests: maxRequests,
	}
}

// requestRarest asks every peer, in id order, for up to maxRequests of the
// rarest needed pieces it has.
func (b *base) requestRarest(pieces piece.Blocks, peers []wire.PeerInfo) []wire.Request {
	needed := pieces.Needed(b.conf.BlocksPerPiece)
	ranked := piece.RarestFirst(needed, peers, b.conf.NumPieces, b.rng)

	sortByID(peers)
	requests := []wire.Request{}
	for _, p := range peers {
		for _, pieceIndex := range piece.Wanted(ranked, p, b.maxRequests) {
			requests = append(requests, wire.Request{
				RequesterID: b.id,
				PeerID:      p.ID,
				PieceID:     pieceIndex,
				Start:       pieces[pieceIndex],
			})
		}
	}
	return requests
}

// requesters returns the distinct requester ids in order of first appearance.
func requesters(requests []wire.Request) []string {
	seen := mapset.NewThreadUnsafeSet()
	ids := []string{}
	for _, r := range requests {
		if seen.Add(r.RequesterID) {
			ids = append(ids, r.RequesterID)
		}
	}
	return ids
}

func sortByID(peers []wire.PeerInfo) {
	sort.Slice(peers, func(i, j int) bool {
		return peers[i].ID < peers[j].ID
	})
}

func (b *base) uploadsTo(ids []string, bws []int) []wire.Upload {
	uploads := []wire.Upload{}
	for i, id := range ids {
		uploads = append(uploads, wire.Upload{FromID: b.id, ToID: id, BW: bws[i]})
	}
	return uploads
}
