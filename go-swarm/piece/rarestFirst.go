package piece

import (
	"math/rand"
	"sort"

	"github.com/Charana123/swarm/go-swarm/wire"
	mapset "github.com/deckarep/golang-set"
)

// Availability counts, for every piece, how many of the given peers have it
// complete.
func Availability(peers []wire.PeerInfo, numPieces int) []int {
	availability := make([]int, numPieces)
	for _, peer := range peers {
		for _, pieceIndex := range peer.AvailablePieces() {
			availability[pieceIndex]++
		}
	}
	return availability
}

// RarestFirst orders the needed pieces that at least one peer has, rarest
// first. Pieces with equal availability are shuffled with rng.
func RarestFirst(needed []int, peers []wire.PeerInfo, numPieces int, rng *rand.Rand) []int {
	availability := Availability(peers, numPieces)

	pieces := make([]int, 0, len(needed))
	for _, pieceIndex := range needed {
		if availability[pieceIndex] > 0 {
			pieces = append(pieces, pieceIndex)
		}
	}
	rng.Shuffle(len(pieces), func(i, j int) {
		pieces[i], pieces[j] = pieces[j], pieces[i]
	})
	sort.SliceStable(pieces, func(i, j int) bool {
		return availability[pieces[i]] < availability[pieces[j]]
	})
	return pieces
}

// Wanted returns, in the order of ranked, the pieces peer has that are also
// in ranked, capped at max.
func Wanted(ranked []int, peer wire.PeerInfo, max int) []int {
	has := mapset.NewThreadUnsafeSet()
	for _, pieceIndex := range peer.AvailablePieces() {
		has.Add(pieceIndex)
	}
	wanted := []int{}
	for _, pieceIndex := range ranked {
		if len(wanted) == max {
			break
		}
		if has.Contains(pieceIndex) {
			wanted = append(wanted, pieceIndex)
		}
	}
	return wanted
}
