package history

import (
	"github.com/Charana123/swarm/go-swarm/wire"
)

// AgentHistory is one peer's read-only view of the rounds completed before
// it was taken: the Downloads it received and the Uploads it issued.
type AgentHistory struct {
	peerID    string
	downloads [][]wire.Download
	uploads   [][]wire.Upload
}

func (ah AgentHistory) PeerID() string {
	return ah.peerID
}

// CurrentRound is the round being played; 0 is the first.
func (ah AgentHistory) CurrentRound() int {
	return len(ah.downloads)
}

// LastRound is -1 during the first round.
func (ah AgentHistory) LastRound() int {
	return len(ah.downloads) - 1
}

// Downloads returns a copy of what the peer received in round, nil for rounds
// outside the view.
func (ah AgentHistory) Downloads(round int) []wire.Download {
	if round < 0 || round >= len(ah.downloads) {
		return nil
	}
	return append([]wire.Download(nil), ah.downloads[round]...)
}

// Uploads returns a copy of what the peer granted in round.
func (ah AgentHistory) Uploads(round int) []wire.Upload {
	if round < 0 || round >= len(ah.uploads) {
		return nil
	}
	return append([]wire.Upload(nil), ah.uploads[round]...)
}
