package wire

import (
	"fmt"

	bitmap "github.com/boljen/go-bitmap"
)

// Request asks PeerID for the blocks of PieceID starting at block Start.
type Request struct {
	RequesterID string
	PeerID      string
	PieceID     int
	Start       int
}

// Upload grants ToID BW blocks of FromID's bandwidth for the round.
type Upload struct {
	FromID string
	ToID   string
	BW     int
}

// Download records what a requester actually received in a round. Only the
// engine creates these.
type Download struct {
	FromID string
	ToID   string
	Piece  int
	Blocks int
}

// PeerInfo is what a strategy may know about another peer: its id and the
// pieces it has completed. The bitfield is private and never handed out.
type PeerInfo struct {
	ID        string
	available bitmap.Bitmap
	numPieces int
}

// NewPeerInfo copies available, so later changes to it are not visible
// through the returned PeerInfo.
func NewPeerInfo(id string, available bitmap.Bitmap, numPieces int) PeerInfo {
	return PeerInfo{
		ID:        id,
		available: bitmap.Bitmap(available.Data(true)),
		numPieces: numPieces,
	}
}

func (pi PeerInfo) Has(pieceIndex int) bool {
	if pieceIndex < 0 || pieceIndex >= pi.numPieces {
		return false
	}
	return pi.available.Get(pieceIndex)
}

// AvailablePieces returns the completed piece indices in ascending order.
func (pi PeerInfo) AvailablePieces() []int {
	pieces := []int{}
	for pieceIndex := 0; pieceIndex < pi.numPieces; pieceIndex++ {
		if pi.available.Get(pieceIndex) {
			pieces = append(pieces, pieceIndex)
		}
	}
	return pieces
}

func (pi PeerInfo) NumAvailable() int {
	return len(pi.AvailablePieces())
}

func (r Request) String() string {
	return fmt.Sprintf("Request(requester_id=%s, peer_id=%s, piece_id=%d, start=%d)",
		r.RequesterID, r.PeerID, r.PieceID, r.Start)
}

func (u Upload) String() string {
	return fmt.Sprintf("Upload(from_id=%s, to_id=%s, bw=%d)", u.FromID, u.ToID, u.BW)
}

func (d Download) String() string {
	return fmt.Sprintf("Download(from_id=%s, to_id=%s, piece=%d, blocks=%d)",
		d.FromID, d.ToID, d.Piece, d.Blocks)
}

func (pi PeerInfo) String() string {
	return fmt.Sprintf("PeerInfo(id=%s, available=%v)", pi.ID, pi.AvailablePieces())
}
