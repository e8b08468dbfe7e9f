package runner

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/Charana123/swarm/go-swarm/config"
	"github.com/Charana123/swarm/go-swarm/history"
	"github.com/Charana123/swarm/go-swarm/peer"
	"github.com/Charana123/swarm/go-swarm/sim"
	"github.com/Charana123/swarm/go-swarm/stats"
	"github.com/Charana123/swarm/go-swarm/storage"
	"github.com/google/uuid"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Option func(*Runner)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

func WithScope(scope tally.Scope) Option {
	return func(r *Runner) {
		r.stats = scope
	}
}

// WithStorage saves a report of every run into store.
func WithStorage(store storage.Storage) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// Runner plays the configured number of independent runs and aggregates
// them.
type Runner struct {
	conf   *config.Config
	reg    *peer.Registry
	logger *zap.Logger
	stats  tally.Scope
	store  storage.Storage
	newID  func() string
}

// Result holds every run, in iteration order.
type Result struct {
	RunIDs    []string
	PeerIDs   []string
	Outcomes  []*sim.Outcome
	Summaries []stats.Summary
}

func New(conf *config.Config, reg *peer.Registry, opts ...Option) *Runner {
	r := &Runner{
		conf:   conf,
		reg:    reg,
		logger: zap.NewNop(),
		stats:  tally.NoopScope,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) runOnce(iteration int, runID string) (*sim.Outcome, error) {
	logger := r.logger.With(zap.Int("iteration", iteration), zap.String("run_id", runID))
	s, err := sim.New(r.conf, r.reg,
		sim.WithLogger(logger),
		sim.WithScope(r.stats.SubScope("sim")),
		sim.WithRand(rand.New(rand.NewSource(r.conf.Seed+int64(iteration)))))
	if err != nil {
		return nil, err
	}
	out, err := s.RunOnce()
	if err != nil {
		return nil, fmt.Errorf("run %d: %w", iteration, err)
	}
	logger.Info("Run finished",
		zap.Int("rounds", out.Rounds),
		zap.String("uploaded", stats.UploadedBlocksString(out.PeerIDs, out.History)),
		zap.String("completion", stats.CompletionRoundsString(out.PeerIDs, out.History)))

	if r.store != nil {
		if err := r.store.SaveRun(storage.NewReport(runID, iteration, out.History)); err != nil {
			return nil, fmt.Errorf("save run %s: %w", runID, err)
		}
	}
	r.stats.Counter("runs").Inc(1)
	return out, nil
}

// Run plays conf.Iters runs, at most conf.ParallelRuns at a time. The first
// failing run cancels the ones not yet started.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	iters := r.conf.Iters
	result := &Result{
		RunIDs:   make([]string, iters),
		Outcomes: make([]*sim.Outcome, iters),
	}
	for i := range result.RunIDs {
		result.RunIDs[i] = r.newID()
	}

	g, ctx := errgroup.WithContext(ctx)
	limit := r.conf.ParallelRuns
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for i := 0; i < iters; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := r.runOnce(i, result.RunIDs[i])
			if err != nil {
				return err
			}
			result.Outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	histories := make([]*history.History, iters)
	for i, out := range result.Outcomes {
		histories[i] = out.History
	}
	if iters > 0 {
		result.PeerIDs = result.Outcomes[0].PeerIDs
	}
	result.Summaries = stats.Summarize(result.PeerIDs, histories)
	r.logSummary(result.Summaries)
	return result, nil
}

func (r *Runner) logSummary(summaries []stats.Summary) {
	uploads := []string{}
	for _, s := range summaries {
		uploads = append(uploads, s.UploadString())
	}
	completions := []string{}
	for _, s := range stats.ByCompletion(summaries) {
		completions = append(completions, s.CompletionString())
	}
	r.logger.Warn("Uploaded blocks: avg (stddev)\n" + strings.Join(uploads, "\n"))
	r.logger.Warn("Completion rounds: avg (stddev)\n" + strings.Join(completions, "\n"))
}
