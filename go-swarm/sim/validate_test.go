package sim

import (
	"errors"
	"testing"

	"github.com/Charana123/swarm/go-swarm/config"
	"github.com/Charana123/swarm/go-swarm/piece"
	"github.com/Charana123/swarm/go-swarm/wire"
	bitmap "github.com/boljen/go-bitmap"
	mapset "github.com/deckarep/golang-set"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var params = config.Params{
	NumPieces:      3,
	BlocksPerPiece: 4,
	MinUpBW:        4,
	MaxUpBW:        10,
	MaxRound:       5,
}

func peerInfo(id string, pieces ...int) wire.PeerInfo {
	bitfield := bitmap.New(params.NumPieces)
	for _, p := range pieces {
		bitfield.Set(p, true)
	}
	return wire.NewPeerInfo(id, bitfield, params.NumPieces)
}

func validationFixture() (mapset.Set, map[string]wire.PeerInfo) {
	known := mapset.NewThreadUnsafeSet()
	known.Add("A0")
	known.Add("B0")
	snapshot := map[string]wire.PeerInfo{
		"A0": peerInfo("A0"),
		"B0": peerInfo("B0", 0, 2),
	}
	return known, snapshot
}

func TestCheckRequestsAccepts(t *testing.T) {
	known, snapshot := validationFixture()
	pieces := piece.Blocks{1, 0, 3}

	err := checkRequests(params, "A0", []wire.Request{
		{RequesterID: "A0", PeerID: "B0", PieceID: 0, Start: 1},
		{RequesterID: "A0", PeerID: "B0", PieceID: 2, Start: 3},
	}, pieces, known, snapshot)
	assert.NoError(t, err)

	assert.NoError(t, checkRequests(params, "A0", nil, pieces, known, snapshot))
}

func TestCheckRequestsRules(t *testing.T) {
	known, snapshot := validationFixture()
	pieces := piece.Blocks{1, 0, 3}

	tests := []struct {
		name    string
		request wire.Request
		rule    error
	}{
		{"piece out of range", wire.Request{RequesterID: "A0", PeerID: "B0", PieceID: 3}, ErrBadPieceID},
		{"negative piece", wire.Request{RequesterID: "A0", PeerID: "B0", PieceID: -1}, ErrBadPieceID},
		{"unknown peer", wire.Request{RequesterID: "A0", PeerID: "Z0", PieceID: 0, Start: 1}, ErrUnknownPeer},
		{"someone else's request", wire.Request{RequesterID: "B0", PeerID: "B0", PieceID: 0, Start: 1}, ErrWrongRequester},
		{"start behind progress", wire.Request{RequesterID: "A0", PeerID: "B0", PieceID: 0, Start: 0}, ErrBadStartBlock},
		{"start ahead of progress", wire.Request{RequesterID: "A0", PeerID: "B0", PieceID: 0, Start: 2}, ErrBadStartBlock},
		{"start past the piece", wire.Request{RequesterID: "A0", PeerID: "B0", PieceID: 0, Start: 4}, ErrBadStartBlock},
		{"piece not available", wire.Request{RequesterID: "A0", PeerID: "B0", PieceID: 1, Start: 0}, ErrPieceNotAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkRequests(params, "A0", []wire.Request{tt.request}, pieces, known, snapshot)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIllegalRequest))
			assert.True(t, errors.Is(err, tt.rule))

			var illegal *IllegalRequestError
			require.True(t, errors.As(err, &illegal))
			assert.Equal(t, "A0", illegal.PeerID)
			assert.Equal(t, tt.request, illegal.Request)
		})
	}
}

func TestCheckRequestsAppliesRulesInOrder(t *testing.T) {
	known, snapshot := validationFixture()

	// the second request breaks an earlier rule than the first
	err := checkRequests(params, "A0", []wire.Request{
		{RequesterID: "A0", PeerID: "B0", PieceID: 1, Start: 0},
		{RequesterID: "A0", PeerID: "B0", PieceID: 7, Start: 0},
	}, piece.Empty(params.NumPieces), known, snapshot)
	assert.True(t, errors.Is(err, ErrBadPieceID))
}

func TestCheckUploads(t *testing.T) {
	assert.NoError(t, checkUploads("A0", []wire.Upload{
		{FromID: "A0", ToID: "B0", BW: 3},
		{FromID: "A0", ToID: "C0", BW: 2},
	}, 5))
	assert.NoError(t, checkUploads("A0", nil, 0))

	tests := []struct {
		name    string
		uploads []wire.Upload
		rule    error
	}{
		{"self upload", []wire.Upload{{FromID: "A0", ToID: "A0", BW: 1}}, ErrSelfUpload},
		{"wrong uploader", []wire.Upload{{FromID: "B0", ToID: "C0", BW: 1}}, ErrWrongUploader},
		{"negative", []wire.Upload{{FromID: "A0", ToID: "B0", BW: -1}}, ErrNegativeBandwidth},
		{"over capacity", []wire.Upload{
			{FromID: "A0", ToID: "B0", BW: 3},
			{FromID: "A0", ToID: "C0", BW: 3},
		}, ErrBandwidthExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkUploads("A0", tt.uploads, 5)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIllegalUpload))
			assert.True(t, errors.Is(err, tt.rule))
			assert.False(t, errors.Is(err, ErrIllegalRequest))
		})
	}
}

func TestBandwidthExceededNamesLimit(t *testing.T) {
	err := checkUploads("A0", []wire.Upload{{FromID: "A0", ToID: "B0", BW: 6}}, 5)
	var illegal *IllegalUploadError
	require.True(t, errors.As(err, &illegal))
	assert.Contains(t, illegal.Error(), "limit 5, total 6")
}
