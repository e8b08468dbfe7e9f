package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Charana123/swarm/go-swarm/history"
	underscore "github.com/ahl5esoft/golang-underscore"
)

// UploadedBlocks returns the total blocks each peer supplied over the run.
func UploadedBlocks(peerIDs []string, hist *history.History) map[string]int {
	uploaded := make(map[string]int)
	for _, id := range peerIDs {
		uploaded[id] += 0
		for round := 0; round <= hist.LastRound(); round++ {
			for _, d := range hist.Downloads(id, round) {
				uploaded[d.FromID] += d.Blocks
			}
		}
	}
	return uploaded
}

// Completion is the round a peer finished, Done false if it never did.
type Completion struct {
	Round int
	Done  bool
}

func (c Completion) String() string {
	if !c.Done {
		return "None"
	}
	return fmt.Sprint(c.Round)
}

func CompletionRounds(peerIDs []string, hist *history.History) map[string]Completion {
	rounds := make(map[string]Completion)
	for _, id := range peerIDs {
		round, done := hist.CompletionRound(id)
		rounds[id] = Completion{Round: round, Done: done}
	}
	return rounds
}

// AllDoneRound is the round the last peer finished; false if any never did.
func AllDoneRound(peerIDs []string, hist *history.History) (int, bool) {
	last := 0
	for _, c := range CompletionRounds(peerIDs, hist) {
		if !c.Done {
			return 0, false
		}
		if c.Round > last {
			last = c.Round
		}
	}
	return last, true
}

func UploadedBlocksString(peerIDs []string, hist *history.History) string {
	uploaded := UploadedBlocks(peerIDs, hist)
	ids := append([]string(nil), peerIDs...)
	sort.SliceStable(ids, func(i, j int) bool {
		return uploaded[ids[i]] < uploaded[ids[j]]
	})
	lines := []string{}
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("%s: %d, bw=%d", id, uploaded[id], hist.UploadRate(id)))
	}
	return strings.Join(lines, "\n")
}

func CompletionRoundsString(peerIDs []string, hist *history.History) string {
	rounds := CompletionRounds(peerIDs, hist)
	ids := append([]string(nil), peerIDs...)
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := rounds[ids[i]], rounds[ids[j]]
		if a.Done != b.Done {
			return !a.Done
		}
		return a.Round < b.Round
	})
	lines := []string{}
	for _, id := range ids {
		lines = append(lines, fmt.Sprintf("%s: %s", id, rounds[id]))
	}
	return strings.Join(lines, "\n")
}

func sumReduce(acc, x, _ int) int {
	return acc + x
}

func sumReduceFloat(acc, x float64, _ int) float64 {
	return acc + x
}

// Mean is 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	underscore.Chain(xs).Reduce(sumReduceFloat, 0.0).Value(&sum)
	return sum / float64(len(xs))
}

// Stddev is the population standard deviation; 0 for an empty slice.
func Stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	squares := make([]float64, len(xs))
	for i, x := range xs {
		squares[i] = (x - m) * (x - m)
	}
	var sum float64
	underscore.Chain(squares).Reduce(sumReduceFloat, 0.0).Value(&sum)
	return math.Sqrt(sum / float64(len(xs)))
}

// EvenSplit divides n into k shares as evenly as possible, the larger shares
// last.
func EvenSplit(n, k int) []int {
	if k <= 0 {
		return []int{}
	}
	r := n % k
	shares := make([]int, 0, k)
	for i := 0; i < k-r; i++ {
		shares = append(shares, n/k)
	}
	for i := 0; i < r; i++ {
		shares = append(shares, n/k+1)
	}
	return shares
}
