package builder

import "fresco/protocol"

// Task is one native protocol the evaluator must drive, paired with the
// callback that feeds its output back into the graph once it finishes.
type Task struct {
	Proto    protocol.NativeProtocol
	MarkDone func()
}

// node is the type-erased unit the evaluator tree-walks. Every scope and
// every leaf implements it.
type node interface {
	// collect appends every protocol ready to be driven this sweep onto
	// out. A protocol already in flight (started, not yet Done) is
	// collected again every sweep until it finishes; one not yet
	// startable (its dependencies aren't ready, or — for a sequential
	// scope — its predecessor isn't done) is skipped and retried next
	// sweep, per spec.md §4.2.
	collect(out *[]Task)
	// done reports whether this node and everything nested inside it has
	// finished.
	done() bool
}

// leafNode wraps one native protocol and the deferred result it will
// fulfil. It will not be collected until every dependency it was built
// with is itself Ready.
type leafNode struct {
	deps     []Ready
	proto    protocol.NativeProtocol
	onDone   func()
	started  bool
	finished bool
}

func (l *leafNode) collect(out *[]Task) {
	if l.finished {
		return
	}
	if !l.started {
		for _, d := range l.deps {
			if !d.Ready() {
				return
			}
		}
		l.started = true
	}
	*out = append(*out, Task{Proto: l.proto, MarkDone: l.markDone})
}

func (l *leafNode) markDone() {
	l.finished = true
	l.onDone()
}

func (l *leafNode) done() bool { return l.finished }
