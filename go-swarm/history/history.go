package history

import (
	"fmt"
	"strings"

	"github.com/Charana123/swarm/go-swarm/wire"
)

// History is the whole simulation's ledger: per peer, one list of Downloads
// received and one list of Uploads issued for every completed round.
type History struct {
	peerIDs     []string
	uploadRates map[string]int
	roundDone   map[string]int
	downloads   map[string][][]wire.Download
	uploads     map[string][][]wire.Upload
}

func New(peerIDs []string, uploadRates map[string]int) *History {
	h := &History{
		peerIDs:     append([]string(nil), peerIDs...),
		uploadRates: make(map[string]int),
		roundDone:   make(map[string]int),
		downloads:   make(map[string][][]wire.Download),
		uploads:     make(map[string][][]wire.Upload),
	}
	for _, id := range peerIDs {
		h.uploadRates[id] = uploadRates[id]
		h.downloads[id] = [][]wire.Download{}
		h.uploads[id] = [][]wire.Upload{}
	}
	return h
}

// Update appends one round. Peers missing from dls or ups get an empty entry
// so every peer always has the same number of rounds.
func (h *History) Update(dls map[string][]wire.Download, ups map[string][]wire.Upload) {
	for _, id := range h.peerIDs {
		h.downloads[id] = append(h.downloads[id], append([]wire.Download{}, dls[id]...))
		h.uploads[id] = append(h.uploads[id], append([]wire.Upload{}, ups[id]...))
	}
}

// PeerIsDone records the round a peer finished. Only the first call for a
// peer has any effect.
func (h *History) PeerIsDone(round int, peerID string) {
	if _, ok := h.roundDone[peerID]; !ok {
		h.roundDone[peerID] = round
	}
}

// CompletionRound returns the round peerID finished in, if it did.
func (h *History) CompletionRound(peerID string) (int, bool) {
	round, ok := h.roundDone[peerID]
	return round, ok
}

func (h *History) PeerIDs() []string {
	return append([]string(nil), h.peerIDs...)
}

func (h *History) UploadRate(peerID string) int {
	return h.uploadRates[peerID]
}

// CurrentRound is the number of completed rounds; 0 is the first round.
func (h *History) CurrentRound() int {
	if len(h.peerIDs) == 0 {
		return 0
	}
	return len(h.downloads[h.peerIDs[0]])
}

// LastRound is the index of the last completed round, -1 before any.
func (h *History) LastRound() int {
	return h.CurrentRound() - 1
}

// Downloads returns the downloads received by peerID in round.
func (h *History) Downloads(peerID string, round int) []wire.Download {
	rounds := h.downloads[peerID]
	if round < 0 || round >= len(rounds) {
		return nil
	}
	return append([]wire.Download(nil), rounds[round]...)
}

// Uploads returns the uploads issued by peerID in round.
func (h *History) Uploads(peerID string, round int) []wire.Upload {
	rounds := h.uploads[peerID]
	if round < 0 || round >= len(rounds) {
		return nil
	}
	return append([]wire.Upload(nil), rounds[round]...)
}

// PeerHistory returns peerID's view of the rounds completed so far.
func (h *History) PeerHistory(peerID string) AgentHistory {
	downloads := h.downloads[peerID]
	uploads := h.uploads[peerID]
	return AgentHistory{
		peerID:    peerID,
		downloads: downloads[:len(downloads):len(downloads)],
		uploads:   uploads[:len(uploads):len(uploads)],
	}
}

func (h *History) PrettyForRound(round int) string {
	s := &strings.Builder{}
	fmt.Fprintf(s, "\nRound %d:\n", round)
	for _, id := range h.peerIDs {
		for _, d := range h.Downloads(id, round) {
			fmt.Fprintf(s, "%s downloaded %d blocks of piece %d from %s\n", id, d.Blocks, d.Piece, d.FromID)
		}
	}
	return s.String()
}

func (h *History) Pretty() string {
	s := &strings.Builder{}
	s.WriteString("History\n")
	for round := 0; round <= h.LastRound(); round++ {
		s.WriteString(h.PrettyForRound(round))
	}
	return s.String()
}
