package sim

import (
	"github.com/Charana123/swarm/go-swarm/piece"
	"github.com/Charana123/swarm/go-swarm/wire"
)

// uploadRate is the bandwidth uploaderID granted requesterID this round, 0 if
// none. Only the first grant counts.
func uploadRate(uploads map[string][]wire.Upload, uploaderID, requesterID string) int {
	for _, u := range uploads[uploaderID] {
		if u.ToID == requesterID {
			return u.BW
		}
	}
	return 0
}

type delivery struct {
	blocks int
	fromID string
}

// groupByPeer groups a requester's requests by the peer asked, keeping the
// order in which peers first appear and the order within each group.
func groupByPeer(requests []wire.Request) ([]string, map[string][]wire.Request) {
	order := []string{}
	groups := make(map[string][]wire.Request)
	for _, r := range requests {
		if _, ok := groups[r.PeerID]; !ok {
			order = append(order, r.PeerID)
		}
		groups[r.PeerID] = append(groups[r.PeerID], r)
	}
	return order, groups
}

// transfer applies a round's uploads to the requests. Requesting the same
// piece from several peers does not stack: only the largest single delivery
// of a piece is credited. peerPieces is not modified.
func transfer(
	blocksPerPiece int,
	peerIDs []string,
	peerPieces map[string]piece.Blocks,
	requests map[string][]wire.Request,
	uploads map[string][]wire.Upload) (map[string]piece.Blocks, map[string][]wire.Download) {

	newPieces := make(map[string]piece.Blocks)
	downloads := make(map[string][]wire.Download)
	for _, id := range peerIDs {
		newPieces[id] = peerPieces[id].Copy()
		downloads[id] = []wire.Download{}
	}

	for _, requesterID := range peerIDs {
		best := make(map[int]delivery)
		pieceOrder := []int{}
		record := func(pieceIndex, blocks int, fromID string) {
			old, ok := best[pieceIndex]
			if !ok {
				pieceOrder = append(pieceOrder, pieceIndex)
			}
			if !ok || blocks > old.blocks {
				best[pieceIndex] = delivery{blocks: blocks, fromID: fromID}
			}
		}

		order, groups := groupByPeer(requests[requesterID])
		for _, peerID := range order {
			bw := uploadRate(uploads, peerID, requesterID)
			if bw <= 0 {
				continue
			}
			// the grant is spent on the requested pieces in order
			for _, r := range groups[peerID] {
				alloced := blocksPerPiece - r.Start
				if bw < alloced {
					alloced = bw
				}
				record(r.PieceID, alloced, peerID)
				bw -= alloced
				if bw == 0 {
					break
				}
			}
		}

		for _, pieceIndex := range pieceOrder {
			d := best[pieceIndex]
			newPieces[requesterID][pieceIndex] += d.blocks
			downloads[requesterID] = append(downloads[requesterID], wire.Download{
				FromID: d.fromID,
				ToID:   requesterID,
				Piece:  pieceIndex,
				Blocks: d.blocks,
			})
		}
	}
	return newPieces, downloads
}
