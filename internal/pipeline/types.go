package pipeline

import (
	"fmt"
	"time"

	"brilopt/internal/bril"
	"brilopt/internal/dce"
	"brilopt/internal/lvn"
)

// Pass names one block-level optimization.
type Pass string

const (
	// PassLVN runs local value numbering.
	PassLVN Pass = "lvn"
	// PassDCE runs dead code elimination to a fixed point.
	PassDCE Pass = "dce"
	// PassDCE1 runs a single dead code elimination scan.
	PassDCE1 Pass = "dce1"
)

// DefaultPasses is the usual order: numbering exposes copies, DCE drops them.
var DefaultPasses = []Pass{PassLVN, PassDCE}

// ParsePasses validates pass names.
func ParsePasses(names []string) ([]Pass, error) {
	passes := make([]Pass, 0, len(names))
	for _, n := range names {
		p := Pass(n)
		switch p {
		case PassLVN, PassDCE, PassDCE1:
			passes = append(passes, p)
		default:
			return nil, fmt.Errorf("unknown pass %q (expected lvn|dce|dce1)", n)
		}
	}
	return passes, nil
}

// Apply runs the pass over one block.
func (p Pass) Apply(b bril.Block) (bril.Block, error) {
	switch p {
	case PassLVN:
		return lvn.Run(b)
	case PassDCE:
		return dce.Run(b), nil
	case PassDCE1:
		return dce.SinglePass(b), nil
	default:
		return nil, fmt.Errorf("unknown pass %q", string(p))
	}
}

// Status captures progress state of one function.
type Status string

const (
	// StatusQueued indicates the function is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates a pass is running.
	StatusWorking Status = "working"
	// StatusCached indicates the result came from the cache.
	StatusCached Status = "cached"
	// StatusDone indicates the function is optimized.
	StatusDone Status = "done"
	// StatusError indicates a pass failed.
	StatusError Status = "error"
)

// Event reports progress for a function. Pass is empty outside a pass.
type Event struct {
	Func    string
	Pass    Pass
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
