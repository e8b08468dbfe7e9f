package stats

import (
	"github.com/Charana123/swarm/go-swarm/history"
	underscore "github.com/ahl5esoft/golang-underscore"
)

const (
	PONDERATION_TIME = 2
)

// PeerStat is one partner's average activity, in blocks per round, over the
// last window rounds of a peer's history.
type PeerStat struct {
	// what the partner sent us
	DownloadRate float64
	// what we granted the partner
	UploadRate float64
	// one slot per round of the window, most recent first
	downloadActivity []int
	uploadActivity   []int
}

// PeerStats builds per-partner rates from the view's last window rounds.
// Rounds before the first one count as zero activity.
func PeerStats(hist history.AgentHistory, window int) map[string]*PeerStat {
	peerStats := make(map[string]*PeerStat)
	if window <= 0 {
		return peerStats
	}
	get := func(id string) *PeerStat {
		peerStat, ok := peerStats[id]
		if !ok {
			peerStat = &PeerStat{
				downloadActivity: make([]int, window),
				uploadActivity:   make([]int, window),
			}
			peerStats[id] = peerStat
		}
		return peerStat
	}

	last := hist.LastRound()
	for round := last; round >= 0 && round > last-window; round-- {
		i := last - round
		for _, d := range hist.Downloads(round) {
			get(d.FromID).downloadActivity[i] += d.Blocks
		}
		for _, u := range hist.Uploads(round) {
			get(u.ToID).uploadActivity[i] += u.BW
		}
	}
	for _, peerStat := range peerStats {
		var downloaded, uploaded int
		underscore.Chain(peerStat.downloadActivity).Reduce(sumReduce, 0).Value(&downloaded)
		peerStat.DownloadRate = float64(downloaded) / float64(window)
		underscore.Chain(peerStat.uploadActivity).Reduce(sumReduce, 0).Value(&uploaded)
		peerStat.UploadRate = float64(uploaded) / float64(window)
	}
	return peerStats
}

// ReceivedFrom totals the blocks received from each partner in one round.
func ReceivedFrom(hist history.AgentHistory, round int) map[string]int {
	received := make(map[string]int)
	for _, d := range hist.Downloads(round) {
		received[d.FromID] += d.Blocks
	}
	return received
}
