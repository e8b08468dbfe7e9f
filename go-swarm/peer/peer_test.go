package peer

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Charana123/swarm/go-swarm/config"
	"github.com/Charana123/swarm/go-swarm/history"
	"github.com/Charana123/swarm/go-swarm/piece"
	"github.com/Charana123/swarm/go-swarm/wire"
	bitmap "github.com/boljen/go-bitmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var conf = config.Params{
	NumPieces:      4,
	BlocksPerPiece: 4,
	MinUpBW:        4,
	MaxUpBW:        10,
	MaxRound:       10,
}

func peerInfo(id string, pieces ...int) wire.PeerInfo {
	bitfield := bitmap.New(conf.NumPieces)
	for _, p := range pieces {
		bitfield.Set(p, true)
	}
	return wire.NewPeerInfo(id, bitfield, conf.NumPieces)
}

func params(id string, upBW int) Params {
	return Params{
		Conf:   conf,
		ID:     id,
		Pieces: piece.Empty(conf.NumPieces),
		UpBW:   upBW,
		Rand:   rand.New(rand.NewSource(42)),
	}
}

func request(from, to string, pieceIndex int) wire.Request {
	return wire.Request{RequesterID: from, PeerID: to, PieceID: pieceIndex}
}

func totalBW(uploads []wire.Upload) int {
	total := 0
	for _, u := range uploads {
		total += u.BW
	}
	return total
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"Dummy", "PropShare", "Seed", "Std", "Tourney", "Tyrant"}, r.Names())

	_, isSeed, err := r.Lookup("Seed")
	require.NoError(t, err)
	assert.True(t, isSeed)

	ctor, isSeed, err := r.Lookup("Std")
	require.NoError(t, err)
	assert.False(t, isSeed)
	assert.NotNil(t, ctor(params("Std0", 5)))

	_, _, err = r.Lookup("Nope")
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
}

func TestSeedUploads(t *testing.T) {
	s := NewSeed(params("Seed0", 10))
	hist := history.New(nil, nil).PeerHistory("Seed0")

	assert.Empty(t, s.Requests(piece.Full(4, 4), nil, hist))
	assert.Empty(t, s.Uploads(nil, nil, hist))

	requests := []wire.Request{
		request("A0", "Seed0", 0), request("A0", "Seed0", 1),
		request("B0", "Seed0", 0), request("C0", "Seed0", 2),
		request("D0", "Seed0", 1), request("E0", "Seed0", 3),
	}
	uploads := s.Uploads(requests, nil, hist)
	assert.Len(t, uploads, SEED_MAX_UPLOADS)
	assert.Equal(t, 10, totalBW(uploads))
	seen := map[string]bool{}
	for _, u := range uploads {
		assert.Equal(t, "Seed0", u.FromID)
		assert.False(t, seen[u.ToID])
		seen[u.ToID] = true
	}
}

func TestDummy(t *testing.T) {
	d := NewDummy(params("Dummy0", 6))
	hist := history.New(nil, nil).PeerHistory("Dummy0")
	pieces := piece.Blocks{4, 2, 0, 0}

	requests := d.Requests(pieces, []wire.PeerInfo{peerInfo("Seed0", 0, 1, 2, 3)}, hist)
	// max_up_bw/blocks_per_piece+1 = 3 requests at most
	assert.Len(t, requests, 3)
	for _, r := range requests {
		assert.NotEqual(t, 0, r.PieceID)
		assert.Equal(t, pieces[r.PieceID], r.Start)
		assert.Equal(t, "Dummy0", r.RequesterID)
	}

	uploads := d.Uploads([]wire.Request{request("A0", "Dummy0", 1)}, nil, hist)
	assert.Equal(t, []wire.Upload{{FromID: "Dummy0", ToID: "A0", BW: 6}}, uploads)
}

func TestStdRequestsRarestFirst(t *testing.T) {
	s := NewStd(params("Std0", 6))
	hist := history.New(nil, nil).PeerHistory("Std0")
	peers := []wire.PeerInfo{
		peerInfo("B0", 0, 1),
		peerInfo("A0", 0, 1, 2),
	}

	requests := s.Requests(piece.Blocks{0, 1, 0, 0}, peers, hist)
	require.Len(t, requests, 5)
	// peers are asked in id order, rarest piece first
	assert.Equal(t, wire.Request{RequesterID: "Std0", PeerID: "A0", PieceID: 2, Start: 0}, requests[0])
	assert.Equal(t, "A0", requests[2].PeerID)
	assert.Equal(t, "B0", requests[3].PeerID)
	for _, r := range requests {
		if r.PieceID == 1 {
			assert.Equal(t, 1, r.Start)
		}
	}
}

func TestStdUploadsReciprocates(t *testing.T) {
	h := history.New([]string{"Std0", "A0", "B0", "C0", "D0", "E0"}, nil)
	h.Update(map[string][]wire.Download{
		"Std0": {
			{FromID: "A0", ToID: "Std0", Piece: 0, Blocks: 4},
			{FromID: "B0", ToID: "Std0", Piece: 1, Blocks: 3},
			{FromID: "C0", ToID: "Std0", Piece: 2, Blocks: 2},
			{FromID: "D0", ToID: "Std0", Piece: 3, Blocks: 1},
		},
	}, nil)

	s := NewStd(params("Std0", 8))
	requests := []wire.Request{
		request("D0", "Std0", 0), request("E0", "Std0", 0),
		request("C0", "Std0", 0), request("B0", "Std0", 0), request("A0", "Std0", 0),
	}
	uploads := s.Uploads(requests, nil, h.PeerHistory("Std0"))
	require.Len(t, uploads, DOWNLOADERS)
	assert.Equal(t, 8, totalBW(uploads))

	to := map[string]bool{}
	for _, u := range uploads {
		to[u.ToID] = true
	}
	assert.True(t, to["A0"])
	assert.True(t, to["B0"])
	assert.True(t, to["C0"])
	// one of the slower peers gets the optimistic unchoke
	assert.True(t, to["D0"] != to["E0"])
}

func TestStdFirstRoundIsOptimistic(t *testing.T) {
	s := NewStd(params("Std0", 5))
	hist := history.New([]string{"Std0"}, nil).PeerHistory("Std0")

	uploads := s.Uploads([]wire.Request{request("A0", "Std0", 0), request("B0", "Std0", 1)}, nil, hist)
	require.Len(t, uploads, 1)
	assert.Equal(t, 5, uploads[0].BW)
}

func TestTyrantStaysWithinCapacity(t *testing.T) {
	ids := []string{"T0", "A0", "B0", "C0"}
	h := history.New(ids, nil)
	peers := []wire.PeerInfo{peerInfo("A0", 0), peerInfo("B0", 1), peerInfo("C0", 2)}
	requests := []wire.Request{request("A0", "T0", 3), request("B0", "T0", 3), request("C0", "T0", 3)}

	for _, ctor := range []Constructor{NewTyrant, NewTourney} {
		tr := ctor(params("T0", 7))
		for round := 0; round < 5; round++ {
			uploads := tr.Uploads(requests, peers, h.PeerHistory("T0"))
			assert.LessOrEqual(t, totalBW(uploads), 7)
			for _, u := range uploads {
				assert.Equal(t, "T0", u.FromID)
				assert.NotEqual(t, "T0", u.ToID)
				assert.GreaterOrEqual(t, u.BW, 0)
			}
			h.Update(map[string][]wire.Download{
				"T0": {{FromID: "A0", ToID: "T0", Piece: 0, Blocks: 2}},
			}, map[string][]wire.Upload{"T0": uploads})
		}
	}
}

// reciprocationHistory has T0 unchoke A0 for the given number of rounds, A0
// sending back sent blocks in each of them.
func reciprocationHistory(rounds, sent int) *history.History {
	h := history.New([]string{"T0", "A0", "B0"}, nil)
	for round := 0; round < rounds; round++ {
		dls := map[string][]wire.Download{}
		if sent > 0 {
			dls["T0"] = []wire.Download{{FromID: "A0", ToID: "T0", Piece: round % conf.NumPieces, Blocks: sent}}
		}
		h.Update(dls, map[string][]wire.Upload{
			"T0": {{FromID: "T0", ToID: "A0", BW: 4}},
		})
	}
	return h
}

func TestTyrantEstimates(t *testing.T) {
	// (min_up_bw+max_up_bw)/2 = 7 split over the two other peers
	const initialU = 3.5

	tests := []struct {
		name   string
		ctor   Constructor
		rounds int
		sent   int
		wantU  float64
		wantD  float64
	}{
		{"unreciprocated raises u by alpha", NewTyrant, 1, 0, initialU * 1.20, 7.0 / 3},
		{"reciprocated for r rounds decays u by gamma", NewTyrant, 3, 2, initialU * 0.90, 2},
		{"reciprocated for fewer than r rounds keeps u", NewTyrant, 2, 2, initialU, 2},
		{"tourney decays after two rounds", NewTourney, 2, 3, initialU * 0.96, 3},
		{"tourney raises u by alpha", NewTourney, 1, 0, initialU * 1.20, 7.0 / 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := reciprocationHistory(tt.rounds, tt.sent)
			tr := tt.ctor(params("T0", 7)).(*tyrant)
			peers := []wire.PeerInfo{peerInfo("A0"), peerInfo("B0")}

			tr.Uploads(nil, peers, h.PeerHistory("T0"))

			assert.InDelta(t, tt.wantU, tr.u["A0"], 1e-9)
			assert.InDelta(t, tt.wantD, tr.d["A0"], 1e-9)
			// B0 was never unchoked and never sent anything
			assert.InDelta(t, initialU, tr.u["B0"], 1e-9)
		})
	}
}

func TestTyrantGreedyByRatio(t *testing.T) {
	tr := NewTyrant(params("T0", 4)).(*tyrant)
	tr.d = map[string]float64{"A0": 1, "B0": 6}
	tr.u = map[string]float64{"A0": 2, "B0": 3}
	hist := history.New([]string{"T0", "A0", "B0"}, nil).PeerHistory("T0")

	uploads := tr.Uploads([]wire.Request{
		request("A0", "T0", 0), request("B0", "T0", 0),
	}, []wire.PeerInfo{peerInfo("A0"), peerInfo("B0")}, hist)

	// B0 has the better d/u ratio and takes 3; A0 needs 2 but only 1 is left
	assert.Equal(t, []wire.Upload{{FromID: "T0", ToID: "B0", BW: 3}}, uploads)
}

func TestTourneyUsesWholeBandwidth(t *testing.T) {
	tr := NewTourney(params("T0", 9))
	hist := history.New([]string{"T0"}, nil).PeerHistory("T0")
	peers := []wire.PeerInfo{peerInfo("A0"), peerInfo("B0")}

	uploads := tr.Uploads([]wire.Request{request("A0", "T0", 0), request("B0", "T0", 0)}, peers, hist)
	assert.Equal(t, 9, totalBW(uploads))
}

func TestPropShare(t *testing.T) {
	h := history.New([]string{"P0", "A0", "B0", "C0"}, nil)
	h.Update(map[string][]wire.Download{
		"P0": {
			{FromID: "A0", ToID: "P0", Piece: 0, Blocks: 3},
			{FromID: "B0", ToID: "P0", Piece: 1, Blocks: 1},
		},
	}, nil)

	ps := NewPropShare(params("P0", 10))
	uploads := ps.Uploads([]wire.Request{
		request("A0", "P0", 2), request("B0", "P0", 2), request("C0", "P0", 2),
	}, nil, h.PeerHistory("P0"))

	assert.Equal(t, []wire.Upload{
		{FromID: "P0", ToID: "A0", BW: 6},
		{FromID: "P0", ToID: "B0", BW: 2},
		{FromID: "P0", ToID: "C0", BW: 2},
	}, uploads)
}

func TestPropShareWithoutHistory(t *testing.T) {
	ps := NewPropShare(params("P0", 10))
	hist := history.New([]string{"P0"}, nil).PeerHistory("P0")

	uploads := ps.Uploads([]wire.Request{request("A0", "P0", 2)}, nil, hist)
	assert.Equal(t, []wire.Upload{{FromID: "P0", ToID: "A0", BW: 10}}, uploads)
	assert.Empty(t, ps.Uploads(nil, nil, hist))
}
