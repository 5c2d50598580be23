// Package pipeline runs the block passes over every function of a program.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"brilopt/internal/bril"
	"brilopt/internal/cache"
	"brilopt/internal/observ"
	"brilopt/internal/trace"
)

// Request configures one optimization run.
type Request struct {
	Program *bril.Program
	Passes  []Pass
	// Jobs bounds the number of functions optimized at once (0 = GOMAXPROCS).
	Jobs     int
	Progress ProgressSink
	Cache    *cache.DiskCache
	Timer    *observ.Timer
}

// FuncStats describes what happened to one function.
type FuncStats struct {
	Name   string
	Before int
	After  int
	Cached bool
}

// Result holds the optimized program, with functions in input order.
type Result struct {
	Program *bril.Program
	Stats   []FuncStats
}

// Removed returns the total number of instructions dropped.
func (r Result) Removed() int {
	n := 0
	for _, s := range r.Stats {
		n += s.Before - s.After
	}
	return n
}

// Run optimizes every function of req.Program independently. The input
// program is not modified. The first failing function cancels the rest and
// its error is returned wrapped with the function name.
func Run(ctx context.Context, req *Request) (Result, error) {
	if req == nil || req.Program == nil {
		return Result{}, errors.New("missing program")
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "optimize", trace.SpanFromContext(ctx))
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	funcs := req.Program.Functions
	out := &bril.Program{Functions: make([]bril.Function, len(funcs))}
	stats := make([]FuncStats, len(funcs))
	for _, fn := range funcs {
		emit(req.Progress, Event{Func: fn.Name, Status: StatusQueued})
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(funcs))))

	// Each goroutine writes only its own index.
	for i := range funcs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn, st, err := optimizeFunc(gctx, req, funcs[i])
			if err != nil {
				emit(req.Progress, Event{Func: funcs[i].Name, Status: StatusError, Err: err})
				trace.Errorf(tracer, span.ID(), "function %s: %v", funcs[i].Name, err)
				return fmt.Errorf("function %s: %w", funcs[i].Name, err)
			}
			out.Functions[i] = fn
			stats[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Program: out, Stats: stats}
	span.WithExtra("functions", strconv.Itoa(len(funcs))).
		WithExtra("removed", strconv.Itoa(res.Removed()))
	return res, nil
}

func optimizeFunc(ctx context.Context, req *Request, fn bril.Function) (bril.Function, FuncStats, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFunction, "func:"+fn.Name, trace.SpanFromContext(ctx))
	start := time.Now()
	st := FuncStats{Name: fn.Name, Before: len(fn.Instrs)}

	names := make([]string, len(req.Passes))
	for i, p := range req.Passes {
		names[i] = string(p)
	}
	var key cache.Digest
	if req.Cache != nil {
		key = cache.Key(names, fn)
		var payload cache.Payload
		ok, err := req.Cache.Get(key, &payload)
		if err != nil {
			trace.Errorf(tracer, span.ID(), "cache read %s: %v", key, err)
		}
		if ok {
			st.After, st.Cached = len(payload.Instrs), true
			emit(req.Progress, Event{Func: fn.Name, Status: StatusCached, Elapsed: time.Since(start)})
			span.End("cached")
			return bril.Function{Name: fn.Name, Instrs: payload.Instrs}, st, nil
		}
	}

	body := fn.Instrs.Clone()
	for _, p := range req.Passes {
		emit(req.Progress, Event{Func: fn.Name, Pass: p, Status: StatusWorking})
		ps := trace.Begin(tracer, trace.ScopePass, string(p), span.ID())
		stop := req.Timer.Track(string(p))
		next, err := p.Apply(body)
		stop()
		if err != nil {
			ps.End("error")
			span.End("error")
			return bril.Function{}, st, err
		}
		ps.WithExtra("before", strconv.Itoa(len(body))).WithExtra("after", strconv.Itoa(len(next))).End("")
		body = next
	}
	st.After = len(body)

	if req.Cache != nil {
		if err := req.Cache.Put(key, &cache.Payload{Func: fn.Name, Passes: names, Instrs: body}); err != nil {
			trace.Errorf(tracer, span.ID(), "cache write %s: %v", key, err)
		}
	}
	emit(req.Progress, Event{Func: fn.Name, Status: StatusDone, Elapsed: time.Since(start)})
	span.WithExtra("before", strconv.Itoa(st.Before)).WithExtra("after", strconv.Itoa(st.After)).End("")
	return bril.Function{Name: fn.Name, Instrs: body}, st, nil
}
