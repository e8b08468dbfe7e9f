package sim

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/Charana123/swarm/go-swarm/config"
	"github.com/Charana123/swarm/go-swarm/history"
	"github.com/Charana123/swarm/go-swarm/peer"
	"github.com/Charana123/swarm/go-swarm/piece"
	"github.com/Charana123/swarm/go-swarm/wire"
	mapset "github.com/deckarep/golang-set"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Option configures a Sim.
type Option func(*Sim)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Sim) {
		s.logger = logger
	}
}

func WithScope(scope tally.Scope) Option {
	return func(s *Sim) {
		s.stats = scope
	}
}

// WithRand sets the source every bandwidth draw and strategy seed is taken
// from.
func WithRand(rng *rand.Rand) Option {
	return func(s *Sim) {
		s.rng = rng
	}
}

// WithBandwidth replaces the upload capacity draw.
func WithBandwidth(bandwidth func(peerID string, seed bool) int) Option {
	return func(s *Sim) {
		s.bandwidth = bandwidth
	}
}

type Sim struct {
	conf      *config.Config
	reg       *peer.Registry
	logger    *zap.Logger
	stats     tally.Scope
	rng       *rand.Rand
	bandwidth func(peerID string, seed bool) int
}

// Outcome is the result of one run.
type Outcome struct {
	History *history.History
	Pieces  map[string]piece.Blocks
	PeerIDs []string
	UpBWs   map[string]int
	Rounds  int
}

type swarmPeer struct {
	id       string
	upBW     int
	strategy peer.Strategy
}

func New(conf *config.Config, reg *peer.Registry, opts ...Option) (*Sim, error) {
	if err := conf.ValidateBasic(); err != nil {
		return nil, err
	}
	for _, name := range conf.AgentNames() {
		if _, _, err := reg.Lookup(name); err != nil {
			return nil, err
		}
	}

	s := &Sim{
		conf:   conf,
		reg:    reg,
		logger: zap.NewNop(),
		stats:  tally.NoopScope,
		rng:    rand.New(rand.NewSource(conf.Seed)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bandwidth == nil {
		s.bandwidth = s.drawBandwidth
	}
	return s, nil
}

func (s *Sim) drawBandwidth(peerID string, seed bool) int {
	if seed {
		return s.conf.MaxUpBW
	}
	return s.conf.MinUpBW + s.rng.Intn(s.conf.MaxUpBW-s.conf.MinUpBW+1)
}

// createPeers builds the roster in registration order. Ids are the strategy
// name followed by a per-name counter.
func (s *Sim) createPeers() ([]swarmPeer, map[string]piece.Blocks, error) {
	params := s.conf.Params
	counts := make(map[string]int)
	peers := []swarmPeer{}
	pieces := make(map[string]piece.Blocks)

	for _, name := range s.conf.AgentNames() {
		ctor, seed, err := s.reg.Lookup(name)
		if err != nil {
			return nil, nil, err
		}
		id := fmt.Sprintf("%s%d", name, counts[name])
		counts[name]++

		blocks := piece.Empty(params.NumPieces)
		if seed {
			blocks = piece.Full(params.NumPieces, params.BlocksPerPiece)
		}
		upBW := s.bandwidth(id, seed)
		strategy := ctor(peer.Params{
			Conf:   params,
			ID:     id,
			Pieces: blocks.Copy(),
			UpBW:   upBW,
			Rand:   rand.New(rand.NewSource(s.rng.Int63())),
		})

		peers = append(peers, swarmPeer{id: id, upBW: upBW, strategy: strategy})
		pieces[id] = blocks
	}
	return peers, pieces, nil
}

// phase asks every peer for its move with call and checks it with check. In
// sequential mode each move is checked as soon as it is made, so no later
// peer plays after a violation. With parallel peers every call runs first
// and the checks follow in registration order. call must only write to its
// own slot.
func (s *Sim) phase(n int, call func(i int), check func(i int) error) error {
	if !s.conf.ParallelPeers {
		for i := 0; i < n; i++ {
			call(i)
			if err := check(i); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			call(i)
			return nil
		})
	}
	g.Wait()
	for i := 0; i < n; i++ {
		if err := check(i); err != nil {
			return err
		}
	}
	return nil
}

func othersInfo(snapshot []wire.PeerInfo, self string) []wire.PeerInfo {
	others := make([]wire.PeerInfo, 0, len(snapshot))
	for _, pi := range snapshot {
		if pi.ID != self {
			others = append(others, pi)
		}
	}
	return others
}

// RunOnce plays one game from a fresh roster until every peer has the whole
// file or max_round is passed.
func (s *Sim) RunOnce() (*Outcome, error) {
	params := s.conf.Params
	peers, peerPieces, err := s.createPeers()
	if err != nil {
		return nil, err
	}

	peerIDs := make([]string, len(peers))
	upBWs := make(map[string]int)
	knownPeers := mapset.NewThreadUnsafeSet()
	for i, p := range peers {
		peerIDs[i] = p.id
		upBWs[p.id] = p.upBW
		knownPeers.Add(p.id)
	}
	hist := history.New(peerIDs, upBWs)

	s.logger.Info("Starting run",
		zap.Stringer("params", params),
		zap.Strings("peers", peerIDs))

	for round := 0; ; round++ {
		sw := s.stats.Timer("round").Start()
		s.logger.Info("Round", zap.Int("round", round))

		snapshot := make([]wire.PeerInfo, len(peers))
		byID := make(map[string]wire.PeerInfo)
		for i, p := range peers {
			snapshot[i] = wire.NewPeerInfo(p.id, peerPieces[p.id].Bitfield(params.BlocksPerPiece), params.NumPieces)
			byID[p.id] = snapshot[i]
		}
		views := make([]history.AgentHistory, len(peers))
		for i, p := range peers {
			views[i] = hist.PeerHistory(p.id)
		}

		// request phase
		requestSlots := make([][]wire.Request, len(peers))
		requests := make(map[string][]wire.Request)
		numRequests := 0
		err := s.phase(len(peers), func(i int) {
			p := peers[i]
			requestSlots[i] = p.strategy.Requests(
				peerPieces[p.id].Copy(), othersInfo(snapshot, p.id), views[i])
		}, func(i int) error {
			p := peers[i]
			if err := checkRequests(params, p.id, requestSlots[i], peerPieces[p.id], knownPeers, byID); err != nil {
				return err
			}
			requests[p.id] = append([]wire.Request(nil), requestSlots[i]...)
			numRequests += len(requestSlots[i])
			return nil
		})
		if err != nil {
			return nil, err
		}

		// upload phase
		uploadSlots := make([][]wire.Upload, len(peers))
		uploads := make(map[string][]wire.Upload)
		numUploads := 0
		err = s.phase(len(peers), func(i int) {
			p := peers[i]
			uploadSlots[i] = p.strategy.Uploads(
				requestsTo(peerIDs, requests, p.id), othersInfo(snapshot, p.id), views[i])
		}, func(i int) error {
			p := peers[i]
			if err := checkUploads(p.id, uploadSlots[i], p.upBW); err != nil {
				return err
			}
			uploads[p.id] = append([]wire.Upload(nil), uploadSlots[i]...)
			numUploads += len(uploadSlots[i])
			return nil
		})
		if err != nil {
			return nil, err
		}

		newPieces, downloads := transfer(params.BlocksPerPiece, peerIDs, peerPieces, requests, uploads)
		peerPieces = newPieces
		hist.Update(downloads, uploads)

		blocks := 0
		for _, id := range peerIDs {
			for _, d := range downloads[id] {
				blocks += d.Blocks
			}
		}
		s.stats.Counter("rounds").Inc(1)
		s.stats.Counter("requests").Inc(int64(numRequests))
		s.stats.Counter("uploads").Inc(int64(numUploads))
		s.stats.Counter("blocks_downloaded").Inc(int64(blocks))

		if ce := s.logger.Check(zap.DebugLevel, "Round history"); ce != nil {
			ce.Write(zap.String("history", hist.PrettyForRound(round)),
				zap.String("pieces", prettyPieces(peerIDs, peerPieces)))
		}
		s.logger.Info("Pieces completed",
			zap.Int("round", round),
			zap.String("completed", prettyCompleted(peerIDs, peerPieces, params.BlocksPerPiece)))

		allDone := s.checkDone(round, peerIDs, peerPieces, hist)
		sw.Stop()
		if allDone {
			s.logger.Info("All done", zap.Int("round", round))
			break
		}
		if round+1 > params.MaxRound {
			s.logger.Info("Out of time, stopping", zap.Int("round", round))
			break
		}
	}

	return &Outcome{
		History: hist,
		Pieces:  peerPieces,
		PeerIDs: peerIDs,
		UpBWs:   upBWs,
		Rounds:  hist.CurrentRound(),
	}, nil
}

// checkDone records peers that hold the whole file and reports whether all
// of them do.
func (s *Sim) checkDone(round int, peerIDs []string, peerPieces map[string]piece.Blocks, hist *history.History) bool {
	done := 0
	for _, id := range peerIDs {
		if peerPieces[id].Done(s.conf.BlocksPerPiece) {
			hist.PeerIsDone(round, id)
			done++
		}
	}
	s.stats.Gauge("peers_done").Update(float64(done))
	return done == len(peerIDs)
}

// requestsTo gathers the requests addressed to peerID, requester by requester
// in registration order.
func requestsTo(peerIDs []string, requests map[string][]wire.Request, peerID string) []wire.Request {
	to := []wire.Request{}
	for _, id := range peerIDs {
		for _, r := range requests[id] {
			if r.PeerID == peerID {
				to = append(to, r)
			}
		}
	}
	return to
}

func prettyPieces(peerIDs []string, peerPieces map[string]piece.Blocks) string {
	parts := []string{}
	for _, id := range peerIDs {
		parts = append(parts, fmt.Sprintf("%s: %v", id, peerPieces[id]))
	}
	return strings.Join(parts, "; ")
}

func prettyCompleted(peerIDs []string, peerPieces map[string]piece.Blocks, blocksPerPiece int) string {
	parts := []string{}
	for _, id := range peerIDs {
		parts = append(parts, fmt.Sprintf("%s: %d", id, peerPieces[id].NumComplete(blocksPerPiece)))
	}
	return strings.Join(parts, "; ")
}
