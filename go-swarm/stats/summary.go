package stats

import (
	"fmt"
	"sort"

	"github.com/Charana123/swarm/go-swarm/history"
)

// Summary aggregates one peer over repeated runs.
type Summary struct {
	PeerID         string
	UploadMean     float64
	UploadStddev   float64
	CompletionMean float64
	CompletionStd  float64
	// false when the peer failed to finish in at least one run
	Completed bool
}

// Summarize aggregates the histories of repeated runs with the same roster,
// sorted by mean uploaded blocks.
func Summarize(peerIDs []string, histories []*history.History) []Summary {
	summaries := []Summary{}
	if len(histories) == 0 {
		return summaries
	}
	uploadedByID := make(map[string][]float64)
	completionByID := make(map[string][]float64)
	completed := make(map[string]bool)
	for _, id := range peerIDs {
		completed[id] = true
	}
	for _, hist := range histories {
		uploaded := UploadedBlocks(peerIDs, hist)
		rounds := CompletionRounds(peerIDs, hist)
		for _, id := range peerIDs {
			uploadedByID[id] = append(uploadedByID[id], float64(uploaded[id]))
			if !rounds[id].Done {
				completed[id] = false
				continue
			}
			completionByID[id] = append(completionByID[id], float64(rounds[id].Round))
		}
	}

	for _, id := range peerIDs {
		s := Summary{
			PeerID:       id,
			UploadMean:   Mean(uploadedByID[id]),
			UploadStddev: Stddev(uploadedByID[id]),
			Completed:    completed[id],
		}
		if s.Completed {
			s.CompletionMean = Mean(completionByID[id])
			s.CompletionStd = Stddev(completionByID[id])
		}
		summaries = append(summaries, s)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UploadMean < summaries[j].UploadMean
	})
	return summaries
}

// ByCompletion returns a copy of summaries ordered by mean completion round,
// unfinished peers first.
func ByCompletion(summaries []Summary) []Summary {
	sorted := append([]Summary(nil), summaries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		return a.CompletionMean < b.CompletionMean
	})
	return sorted
}

func (s Summary) UploadString() string {
	return fmt.Sprintf("%s: %.1f  (%.1f)", s.PeerID, s.UploadMean, s.UploadStddev)
}

func (s Summary) CompletionString() string {
	if !s.Completed {
		return fmt.Sprintf("%s: None  (None)", s.PeerID)
	}
	return fmt.Sprintf("%s: %.1f  (%.1f)", s.PeerID, s.CompletionMean, s.CompletionStd)
}
