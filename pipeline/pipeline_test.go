package pipeline_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/ejacobg/seqlinks/pipeline"
)

func TestFIFOPipeline(t *testing.T) {
	stages := make([]pipeline.StageRunner, 3)
	for i := 0; i < len(stages); i++ {
		stages[i] = pipeline.FIFO(appendingProcessor(fmt.Sprintf("stage_%d", i)))
	}

	src := &sourceStub{data: stringPayloads(3)}
	sink := new(sinkStub)

	p := pipeline.New(stages...)
	if err := p.Process(context.TODO(), src, sink); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if got, want := len(sink.data), len(src.data); got != want {
		t.Fatalf("sink received %d payloads, want %d", got, want)
	}
	for i, p := range sink.data {
		want := fmt.Sprintf("payload_%d/stage_0/stage_1/stage_2", i)
		if got := p.(*stringPayload).val; got != want {
			t.Errorf("payload %d: got %q, want %q", i, got, want)
		}
	}
	assertAllProcessed(t, src.data)
}

func TestFixedWorkerPool(t *testing.T) {
	numWorkers := 10
	src := &sourceStub{data: stringPayloads(numWorkers * 10)}
	sink := new(sinkStub)

	p := pipeline.New(pipeline.FixedWorkerPool(passthroughProcessor(), numWorkers))
	if err := p.Process(context.TODO(), src, sink); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if got, want := len(sink.data), len(src.data); got != want {
		t.Errorf("sink received %d payloads, want %d", got, want)
	}
}

func TestDynamicWorkerPool(t *testing.T) {
	src := &sourceStub{data: stringPayloads(100)}
	sink := new(sinkStub)

	p := pipeline.New(pipeline.DynamicWorkerPool(passthroughProcessor(), 5))
	if err := p.Process(context.TODO(), src, sink); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if got, want := len(sink.data), len(src.data); got != want {
		t.Errorf("sink received %d payloads, want %d", got, want)
	}
}

func TestBroadcast(t *testing.T) {
	numProcs := 3
	procs := make([]pipeline.Processor, numProcs)
	for i := 0; i < numProcs; i++ {
		procs[i] = passthroughProcessor()
	}

	src := &sourceStub{data: stringPayloads(5)}
	sink := new(sinkStub)

	p := pipeline.New(pipeline.Broadcast(procs[0], procs[1:]...))
	if err := p.Process(context.TODO(), src, sink); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	// Each payload is copied once per processor.
	if got, want := len(sink.data), len(src.data)*numProcs; got != want {
		t.Errorf("sink received %d payloads, want %d", got, want)
	}
}

func TestPayloadDiscarding(t *testing.T) {
	src := &sourceStub{data: stringPayloads(4)}
	sink := new(sinkStub)

	discard := pipeline.ProcessorFunc(func(_ context.Context, _ pipeline.Payload) (pipeline.Payload, error) {
		return nil, nil
	})

	p := pipeline.New(pipeline.FIFO(discard))
	if err := p.Process(context.TODO(), src, sink); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if len(sink.data) != 0 {
		t.Errorf("sink received %d payloads, want 0", len(sink.data))
	}
	assertAllProcessed(t, src.data)
}

func TestProcessorErrorPropagation(t *testing.T) {
	src := &sourceStub{data: stringPayloads(2)}
	sink := new(sinkStub)

	failing := pipeline.ProcessorFunc(func(_ context.Context, _ pipeline.Payload) (pipeline.Payload, error) {
		return nil, fmt.Errorf("no decoration for you")
	})

	p := pipeline.New(pipeline.FIFO(failing))
	err := p.Process(context.TODO(), src, sink)
	if err == nil || !strings.Contains(err.Error(), "pipeline stage 0: no decoration for you") {
		t.Errorf("expected a wrapped stage error, got %v", err)
	}
}

func TestSourceErrorPropagation(t *testing.T) {
	src := &sourceStub{data: stringPayloads(2), err: fmt.Errorf("source ran dry")}
	sink := new(sinkStub)

	p := pipeline.New(pipeline.FIFO(passthroughProcessor()))
	err := p.Process(context.TODO(), src, sink)
	if err == nil || !strings.Contains(err.Error(), "pipeline source: source ran dry") {
		t.Errorf("expected a wrapped source error, got %v", err)
	}
}

func TestSinkErrorPropagation(t *testing.T) {
	src := &sourceStub{data: stringPayloads(2)}
	sink := &sinkStub{err: fmt.Errorf("sink is full")}

	p := pipeline.New(pipeline.FIFO(passthroughProcessor()))
	err := p.Process(context.TODO(), src, sink)
	if err == nil || !strings.Contains(err.Error(), "pipeline sink: sink is full") {
		t.Errorf("expected a wrapped sink error, got %v", err)
	}
}

// stringPayload implements pipeline.Payload for the tests.
type stringPayload struct {
	mu        sync.Mutex
	val       string
	processed bool
}

func (p *stringPayload) Clone() pipeline.Payload {
	return &stringPayload{val: p.val}
}

func (p *stringPayload) MarkAsProcessed() {
	p.mu.Lock()
	p.processed = true
	p.mu.Unlock()
}

func (p *stringPayload) String() string { return p.val }

func stringPayloads(n int) []pipeline.Payload {
	out := make([]pipeline.Payload, n)
	for i := 0; i < n; i++ {
		out[i] = &stringPayload{val: fmt.Sprintf("payload_%d", i)}
	}
	return out
}

// sourceStub emits a fixed list of payloads and optionally reports a
// trailing error.
type sourceStub struct {
	index int
	data  []pipeline.Payload
	err   error
}

func (s *sourceStub) Next(context.Context) bool {
	if s.index >= len(s.data) {
		return false
	}
	s.index++
	return true
}

func (s *sourceStub) Payload() pipeline.Payload {
	return s.data[s.index-1]
}

func (s *sourceStub) Error() error { return s.err }

// sinkStub collects the payloads that reach the end of the pipeline.
type sinkStub struct {
	mu   sync.Mutex
	data []pipeline.Payload
	err  error
}

func (s *sinkStub) Consume(_ context.Context, p pipeline.Payload) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	s.data = append(s.data, p)
	s.mu.Unlock()
	return nil
}

// sorted returns the collected payload values in lexicographic order, for
// stages that emit out of order.
func (s *sinkStub) sorted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.data))
	for i, p := range s.data {
		out[i] = p.(*stringPayload).val
	}
	sort.Strings(out)
	return out
}

func passthroughProcessor() pipeline.Processor {
	return pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		return p, nil
	})
}

func appendingProcessor(suffix string) pipeline.Processor {
	return pipeline.ProcessorFunc(func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
		sp := p.(*stringPayload)
		sp.val += "/" + suffix
		return sp, nil
	})
}

func assertAllProcessed(t *testing.T, payloads []pipeline.Payload) {
	t.Helper()
	for i, p := range payloads {
		if sp := p.(*stringPayload); !sp.processed {
			t.Errorf("payload %d was not marked as processed", i)
		}
	}
}
