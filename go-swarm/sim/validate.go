package sim

import (
	"fmt"

	"github.com/Charana123/swarm/go-swarm/config"
	"github.com/Charana123/swarm/go-swarm/piece"
	"github.com/Charana123/swarm/go-swarm/wire"
	mapset "github.com/deckarep/golang-set"
)

// Each rule is applied to the whole batch before the next one, so later rules
// may rely on earlier ones (a valid piece id, a known peer).

type requestRule struct {
	rule error
	bad  func(r wire.Request) bool
}

// checkRequests validates the requests peerID returned. pieces is the
// engine's piece state for peerID, snapshot the PeerInfo of every peer for
// this round.
func checkRequests(
	conf config.Params,
	peerID string,
	requests []wire.Request,
	pieces piece.Blocks,
	peerIDs mapset.Set,
	snapshot map[string]wire.PeerInfo) error {

	rules := []requestRule{
		{ErrBadPieceID, func(r wire.Request) bool {
			return r.PieceID < 0 || r.PieceID >= conf.NumPieces
		}},
		{ErrUnknownPeer, func(r wire.Request) bool {
			return !peerIDs.Contains(r.PeerID)
		}},
		{ErrWrongRequester, func(r wire.Request) bool {
			return r.RequesterID != peerID
		}},
		// must ask for exactly the next block it needs
		{ErrBadStartBlock, func(r wire.Request) bool {
			return r.Start < 0 ||
				r.Start >= conf.BlocksPerPiece ||
				r.Start != pieces[r.PieceID]
		}},
		{ErrPieceNotAvailable, func(r wire.Request) bool {
			return !snapshot[r.PeerID].Has(r.PieceID)
		}},
	}
	for _, rule := range rules {
		for _, r := range requests {
			if rule.bad(r) {
				return &IllegalRequestError{PeerID: peerID, Rule: rule.rule, Request: r}
			}
		}
	}
	return nil
}

type uploadRule struct {
	rule error
	bad  func(u wire.Upload) bool
}

// checkUploads validates the uploads peerID returned against its capacity.
func checkUploads(peerID string, uploads []wire.Upload, limit int) error {
	rules := []uploadRule{
		{ErrSelfUpload, func(u wire.Upload) bool {
			return u.ToID == peerID
		}},
		{ErrWrongUploader, func(u wire.Upload) bool {
			return u.FromID != peerID
		}},
		{ErrNegativeBandwidth, func(u wire.Upload) bool {
			return u.BW < 0
		}},
	}
	for _, rule := range rules {
		for _, u := range uploads {
			if rule.bad(u) {
				return &IllegalUploadError{PeerID: peerID, Rule: rule.rule, Upload: u}
			}
		}
	}

	total := 0
	for _, u := range uploads {
		total += u.BW
	}
	if total > limit {
		return &IllegalUploadError{
			PeerID: peerID,
			Rule:   ErrBandwidthExceeded,
			Detail: fmt.Sprintf("limit %d, total %d: %v", limit, total, uploads),
		}
	}
	return nil
}
