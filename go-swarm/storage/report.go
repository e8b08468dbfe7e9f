package storage

import (
	"bytes"
	"io"

	"github.com/Charana123/swarm/go-swarm/history"
	"github.com/Charana123/swarm/go-swarm/stats"
	bencode "github.com/jackpal/bencode-go"
)

// PeerReport is one peer's result. CompletionRound is -1 for a peer that
// never finished.
type PeerReport struct {
	ID              string `bencode:"id"`
	UpBW            int    `bencode:"up_bw"`
	Uploaded        int    `bencode:"uploaded"`
	CompletionRound int    `bencode:"completion_round"`
}

func (p PeerReport) Done() bool {
	return p.CompletionRound >= 0
}

type DownloadRecord struct {
	Round  int    `bencode:"round"`
	FromID string `bencode:"from"`
	ToID   string `bencode:"to"`
	Piece  int    `bencode:"piece"`
	Blocks int    `bencode:"blocks"`
}

// Report is what is kept of a run.
type Report struct {
	ID        string           `bencode:"id"`
	Iteration int              `bencode:"iteration"`
	Rounds    int              `bencode:"rounds"`
	Peers     []PeerReport     `bencode:"peers"`
	Downloads []DownloadRecord `bencode:"downloads"`
}

func NewReport(id string, iteration int, hist *history.History) *Report {
	peerIDs := hist.PeerIDs()
	uploaded := stats.UploadedBlocks(peerIDs, hist)
	completions := stats.CompletionRounds(peerIDs, hist)

	report := &Report{
		ID:        id,
		Iteration: iteration,
		Rounds:    hist.CurrentRound(),
		Peers:     []PeerReport{},
		Downloads: []DownloadRecord{},
	}
	for _, peerID := range peerIDs {
		completion := -1
		if c := completions[peerID]; c.Done {
			completion = c.Round
		}
		report.Peers = append(report.Peers, PeerReport{
			ID:              peerID,
			UpBW:            hist.UploadRate(peerID),
			Uploaded:        uploaded[peerID],
			CompletionRound: completion,
		})
	}
	for round := 0; round <= hist.LastRound(); round++ {
		for _, peerID := range peerIDs {
			for _, d := range hist.Downloads(peerID, round) {
				report.Downloads = append(report.Downloads, DownloadRecord{
					Round:  round,
					FromID: d.FromID,
					ToID:   d.ToID,
					Piece:  d.Piece,
					Blocks: d.Blocks,
				})
			}
		}
	}
	return report
}

func encodeReport(w io.Writer, report *Report) error {
	return bencode.Marshal(w, *report)
}

func decodeReport(r io.Reader) (*Report, error) {
	report := &Report{}
	if err := bencode.Unmarshal(r, report); err != nil {
		return nil, err
	}
	return report, nil
}

func marshalReport(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := encodeReport(buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
