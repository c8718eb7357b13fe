// Package resolver assembles quiz question sets from tiered sources: the
// shared remote repository, the embedded bank, a cache of earlier results
// and, as a last resort, generated content.
package resolver

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/abhisek/quizengine/internal/bank"
	"github.com/abhisek/quizengine/internal/contentgen"
	"github.com/abhisek/quizengine/internal/exclusion"
	"github.com/abhisek/quizengine/internal/netstatus"
	"github.com/abhisek/quizengine/internal/quiz"
	"github.com/abhisek/quizengine/internal/quizcache"
	"github.com/abhisek/quizengine/internal/remote"
	"github.com/abhisek/quizengine/internal/store"
)

// Generator produces validated quiz questions.
type Generator interface {
	GenerateQuiz(ctx context.Context, req quiz.Request) ([]contentgen.Outcome, error)
}

// Deps are the collaborators of a Resolver. Remote and Generator may be
// nil, which disables their tiers. Nil Exclusions and Cache fall back to
// process-local memory.
type Deps struct {
	Exclusions *exclusion.Tracker
	Cache      *quizcache.Cache
	Bank       *bank.Bank
	Remote     remote.Repository
	Generator  Generator
	Network    netstatus.Signal
	Logger     *slog.Logger

	// Rand is the shuffle source. Defaults to a time-seeded PCG.
	Rand *rand.Rand

	// Now is the clock used for cache timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Result is a resolved question set and where it came from.
type Result struct {
	Questions []quiz.Question
	Source    quiz.Source
}

// Resolver runs the tiered resolution pipeline. It is safe for concurrent
// use, but exclusion and cache updates for one key are read-then-write and
// not coordinated across concurrent calls for that key.
type Resolver struct {
	cfg        Config
	exclusions *exclusion.Tracker
	cache      *quizcache.Cache
	bank       *bank.Bank
	remote     remote.Repository
	gen        Generator
	network    netstatus.Signal
	logger     *slog.Logger
	now        func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a Resolver.
func New(cfg Config, deps Deps) *Resolver {
	r := &Resolver{
		cfg:        cfg.withDefaults(),
		exclusions: deps.Exclusions,
		cache:      deps.Cache,
		bank:       deps.Bank,
		remote:     deps.Remote,
		gen:        deps.Generator,
		network:    deps.Network,
		logger:     deps.Logger,
		now:        deps.Now,
		rng:        deps.Rand,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.exclusions == nil {
		r.exclusions = exclusion.NewTracker(store.NewMemoryContentStore(), r.logger)
	}
	if r.cache == nil {
		r.cache = quizcache.New(store.NewMemoryContentStore(), r.logger)
	}
	if r.network == nil {
		r.network = netstatus.Static(true)
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.rng == nil {
		seed := uint64(time.Now().UnixNano())
		r.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return r
}

// Resolve returns between 0 and Target questions for req. It never fails:
// source errors degrade to a partial or empty result.
func (r *Resolver) Resolve(ctx context.Context, req quiz.Request) (res Result) {
	key := req.Key()
	p := newPool()
	log := r.logger.With("key", key)

	defer func() {
		if v := recover(); v != nil {
			log.Error("resolution aborted", "panic", v)
			res = partial(p.snapshot(r.cfg.Target))
		}
	}()

	used := r.usedSet(ctx, key)

	r.remoteTier(ctx, req, p, used)
	r.staticTier(req, p, used)

	if p.len() >= r.cfg.Target {
		qs := p.snapshot(p.len())
		r.shuffle(qs)
		qs = qs[:r.cfg.Target]
		r.commit(ctx, key, qs, quiz.SourceHybridBank)
		log.Debug("resolved from repository and bank", "count", len(qs))
		return Result{Questions: qs, Source: quiz.SourceHybridBank}
	}

	if qs := r.cached(ctx, key); qs != nil {
		log.Debug("resolved from cache", "count", len(qs))
		return Result{Questions: qs, Source: quiz.SourceCache}
	}

	if p.len() == 0 && len(used) > 0 {
		if err := r.exclusions.Reset(ctx, key); err != nil {
			log.Debug("exclusion reset failed", "error", err)
		} else {
			log.Info("question pool exhausted, exclusions recycled", "recycled", len(used))
			used = map[string]bool{}
		}
	}

	if qs, fresh, ok := r.generativeTier(ctx, req, p, used); ok {
		r.commit(ctx, key, qs, quiz.SourceAIGenerated)
		r.writeBack(ctx, req, fresh)
		log.Debug("resolved with generated content", "count", len(qs), "generated", len(fresh))
		return Result{Questions: qs, Source: quiz.SourceAIGenerated}
	}

	res = partial(p.snapshot(r.cfg.Target))
	log.Debug("returning partial pool", "count", len(res.Questions))
	return res
}

func partial(qs []quiz.Question) Result {
	if len(qs) == 0 {
		return Result{Questions: []quiz.Question{}, Source: quiz.SourceEmpty}
	}
	return Result{Questions: qs, Source: quiz.SourcePartial}
}

func (r *Resolver) usedSet(ctx context.Context, key string) map[string]bool {
	used, err := r.exclusions.UsedSet(ctx, key)
	if err != nil {
		r.logger.Debug("exclusion read failed", "key", key, "error", err)
		return map[string]bool{}
	}
	return used
}

func (r *Resolver) online(ctx context.Context) bool {
	return r.network.Online(ctx)
}

func (r *Resolver) remoteTier(ctx context.Context, req quiz.Request, p *pool, used map[string]bool) {
	if r.remote == nil || !r.online(ctx) {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, r.cfg.SourceTimeout)
	defer cancel()

	res := r.remote.Query(sctx, remote.Query{
		Subject:    req.Subject,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Age:        req.StudentAge,
		Limit:      r.cfg.RemoteCandidates,
	})
	if !res.OK() {
		r.logger.Debug("remote tier unavailable", "error", res.Err)
		return
	}
	for _, q := range res.Questions {
		p.add(q, used)
	}
}

func (r *Resolver) staticTier(req quiz.Request, p *pool, used map[string]bool) {
	if r.bank == nil || p.len() >= r.cfg.Target {
		return
	}

	base := bank.Filter{Subject: req.Subject, Difficulty: req.Difficulty, Age: req.StudentAge}

	if quiz.IsLanguageSubject(req.Subject) {
		f := base
		f.Topic = quiz.LanguageTopicKey(req.Subject, req.Topic)
		if r.fill(p, f, used) == 0 {
			f.Topic = ""
			f.TopicMatch = quiz.LanguagePrefix(req.Subject)
			r.fill(p, f, used)
		}
		// Language content never falls back across topics of other languages.
		return
	}

	f := base
	f.Topic = req.Topic
	r.fill(p, f, used)

	if p.len() == 0 {
		r.fill(p, base, used)
	}
}

// fill samples the bank into p up to the target and returns how many
// questions were added.
func (r *Resolver) fill(p *pool, f bank.Filter, used map[string]bool) int {
	need := r.cfg.Target - p.len()
	if need <= 0 {
		return 0
	}
	r.rngMu.Lock()
	qs := r.bank.Sample(f, need, p.exclusions(used), r.rng)
	r.rngMu.Unlock()

	added := 0
	for _, q := range qs {
		if p.add(q, used) {
			added++
		}
	}
	return added
}

// cached returns a previously resolved full set, ignoring exclusions.
func (r *Resolver) cached(ctx context.Context, key string) []quiz.Question {
	entry, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Debug("cache read failed", "key", key, "error", err)
		return nil
	}
	if entry == nil || len(entry.Questions) < r.cfg.Target {
		return nil
	}
	var qs []quiz.Question
	for _, q := range entry.Questions {
		if wellFormed(q) {
			qs = append(qs, q)
		}
	}
	if len(qs) < r.cfg.Target {
		return nil
	}
	return qs[:r.cfg.Target]
}

// generativeTier asks for new questions and merges the valid ones into p.
// ok is false when generation is unavailable or the merged pool is below
// MinViable; p is left untouched in that case.
func (r *Resolver) generativeTier(ctx context.Context, req quiz.Request, p *pool, used map[string]bool) (qs, fresh []quiz.Question, ok bool) {
	if r.gen == nil || !r.online(ctx) {
		return nil, nil, false
	}
	sctx, cancel := context.WithTimeout(ctx, r.cfg.SourceTimeout)
	defer cancel()

	outcomes, err := r.gen.GenerateQuiz(sctx, req)
	if err != nil {
		r.logger.Debug("generative tier failed", "error", err)
		return nil, nil, false
	}

	merged := newPool()
	for _, q := range p.items {
		merged.add(q, nil)
	}
	for _, q := range contentgen.Accepted(outcomes) {
		q = r.shuffleOptions(q)
		if merged.len() < r.cfg.Target && merged.add(q, used) {
			fresh = append(fresh, q)
		}
	}

	if merged.len() < r.cfg.MinViable {
		r.logger.Debug("generated pool below minimum",
			"total", merged.len(), "min", r.cfg.MinViable, "generated", len(fresh))
		return nil, nil, false
	}

	qs = merged.snapshot(r.cfg.Target)
	r.shuffle(qs)
	return qs, fresh, true
}

// commit records qs as served and caches them.
func (r *Resolver) commit(ctx context.Context, key string, qs []quiz.Question, source quiz.Source) {
	if err := r.exclusions.Add(ctx, key, keysOf(qs)); err != nil {
		r.logger.Debug("exclusion write failed", "key", key, "error", err)
	}
	if err := r.cache.Put(ctx, key, qs, source, r.now()); err != nil {
		r.logger.Debug("cache write failed", "key", key, "error", err)
	}
}

// writeBack adds generated questions to the shared repository, one at a
// time, skipping text that is already there. Failures are ignored. Another
// device may insert the same text concurrently.
func (r *Resolver) writeBack(ctx context.Context, req quiz.Request, fresh []quiz.Question) {
	if r.remote == nil || len(fresh) == 0 || !r.online(ctx) {
		return
	}
	written := 0
	for _, q := range fresh {
		if ctx.Err() != nil {
			return
		}
		if r.writeOne(ctx, req, q) {
			written++
		}
	}
	r.logger.Debug("write-back complete", "key", req.Key(), "written", written, "candidates", len(fresh))
}

func (r *Resolver) writeOne(ctx context.Context, req quiz.Request, q quiz.Question) bool {
	sctx, cancel := context.WithTimeout(ctx, r.cfg.SourceTimeout)
	defer cancel()

	found := r.remote.FindByText(sctx, remote.TextQuery{
		Subject:  req.Subject,
		Topic:    req.Topic,
		Question: q.Question,
	})
	if !found.OK() {
		r.logger.Debug("write-back duplicate check failed", "error", found.Err)
		return false
	}
	if len(found.Questions) > 0 {
		return false
	}

	res := r.remote.Add(sctx, remote.NewQuestion{
		Subject:    req.Subject,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Age:        req.StudentAge,
		Question:   q,
		CreatedAt:  r.now(),
	})
	if !res.OK() {
		r.logger.Debug("write-back insert failed", "error", res.Err)
		return false
	}
	return true
}

func (r *Resolver) shuffle(qs []quiz.Question) {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	quiz.Shuffle(qs, r.rng)
}

func (r *Resolver) shuffleOptions(q quiz.Question) quiz.Question {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return quiz.ShuffleOptions(q, r.rng)
}
