package vm

import (
	"testing"

	"github.com/rimewave/audioproc/internal/status"
	"github.com/rimewave/audioproc/pkg/buffer"
	"github.com/rimewave/audioproc/pkg/control"
	"github.com/rimewave/audioproc/pkg/msgqueue"
	"github.com/rimewave/audioproc/pkg/opcode"
	"github.com/rimewave/audioproc/pkg/perf"
	"github.com/rimewave/audioproc/pkg/processor"
	"github.com/rimewave/audioproc/pkg/specpkg"
)

type fakeHost struct{}

func (fakeHost) BlockSize() int      { return 4 }
func (fakeHost) SampleRate() float64 { return 48000 }

func buildProgram(t *testing.T, spec *specpkg.Spec) *specpkg.Program {
	t.Helper()
	size := 0
	for _, bt := range spec.BufferTypes {
		size += bt.Size(fakeHost{})
	}
	arena := buffer.NewArena(size)
	return specpkg.NewProgram(spec, arena, fakeHost{}, 48000, 1)
}

// Scenario 1 (spec §8): silence-through. A CLEAR of the sink buffer
// followed by END must leave the sink at all zeros.
func TestSilenceThrough(t *testing.T) {
	spec := specpkg.NewBuilder().
		WithBuffer("sink:in:left", buffer.NewFloatAudioBlockType(4)).
		Instruction(opcode.New(opcode.CLEAR, opcode.BufferRef(0))).
		Instruction(opcode.New(opcode.END)).
		MustBuild()
	prog := buildProgram(t, spec)

	ctx := NewContext(prog, nil, nil, nil, nil, nil, 1)
	if err := Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sink, _ := prog.Buffer("sink:in:left")
	for _, v := range sink.Float32() {
		if v != 0 {
			t.Errorf("expected silence, got %v", v)
		}
	}
	if !prog.Initialized {
		t.Error("expected program marked initialized after first render")
	}
}

// Scenario 2: a SET_FLOAT-driven constant value mixed into the sink.
func TestConstantMixIntoSink(t *testing.T) {
	spec := specpkg.NewBuilder().
		WithBuffer("const", buffer.NewFloatAudioBlockType(4)).
		WithBuffer("sink:in:left", buffer.NewFloatAudioBlockType(4)).
		Instruction(opcode.New(opcode.CLEAR, opcode.BufferRef(1))).
		Instruction(opcode.New(opcode.SET_FLOAT, opcode.BufferRef(0), opcode.Float(0.5))).
		Instruction(opcode.New(opcode.MIX, opcode.BufferRef(0), opcode.BufferRef(1))).
		Instruction(opcode.New(opcode.END)).
		MustBuild()
	prog := buildProgram(t, spec)

	ctx := NewContext(prog, nil, nil, nil, nil, nil, 1)
	if err := Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sink, _ := prog.Buffer("sink:in:left")
	if sink.Float32()[0] != 0.5 {
		t.Errorf("expected sink[0] == 0.5, got %v", sink.Float32()[0])
	}
}

func TestInitPassRunsConnectPortOnceThenSkips(t *testing.T) {
	desc := processor.NodeDescription{
		Ports:   []processor.PortDescription{{Name: "out", Direction: processor.DirectionOut}},
		TypeTag: "test",
	}
	beh := &countingBehavior{}
	proc := processor.New(1, "root", "node1", desc, beh)
	if err := proc.SetupBehavior(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	spec := specpkg.NewBuilder().
		WithBuffer("out", buffer.NewFloatAudioBlockType(4)).
		WithProcessor(1).
		Instruction(opcode.New(opcode.CONNECT_PORT, opcode.ProcessorRef(0), opcode.Int(0), opcode.BufferRef(0))).
		Instruction(opcode.New(opcode.CALL, opcode.ProcessorRef(0))).
		Instruction(opcode.New(opcode.END)).
		MustBuild()
	prog := buildProgram(t, spec)

	ctx := NewContext(prog, []*processor.Processor{proc}, nil, nil, nil, nil, 1)
	if err := Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if !prog.Initialized {
		t.Fatal("expected the init pass to mark the program initialized")
	}
	// Rewire the port by hand: a second init pass would connect it back to
	// "out", so output landing in spare shows the init pass was skipped.
	spare := buffer.New(buffer.NewFloatAudioBlockType(4), make([]byte, 16))
	if err := proc.ConnectPort(0, spare); err != nil {
		t.Fatalf("rewire: %v", err)
	}
	if err := Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	for _, v := range spare.Float32() {
		if v != 1.0 {
			t.Errorf("expected second run to render into the rewired port, got %v", v)
		}
	}
	out, _ := prog.Buffer("out")
	for _, v := range out.Float32() {
		if v != 1.0 {
			t.Errorf("expected processor output of 1.0 after CALL, got %v", v)
		}
	}
	if beh.calls != 2 {
		t.Errorf("expected Behavior invoked twice (once per Run), got %d", beh.calls)
	}
}

func TestBrokenProcessorIsolationThroughVM(t *testing.T) {
	desc := processor.NodeDescription{
		Ports:   []processor.PortDescription{{Name: "out", Direction: processor.DirectionOut}},
		TypeTag: "test",
	}
	beh := &countingBehavior{failOnCall: 1}
	proc := processor.New(1, "root", "node1", desc, beh)
	if err := proc.SetupBehavior(); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	spec := specpkg.NewBuilder().
		WithBuffer("out", buffer.NewFloatAudioBlockType(4)).
		WithProcessor(1).
		Instruction(opcode.New(opcode.CONNECT_PORT, opcode.ProcessorRef(0), opcode.Int(0), opcode.BufferRef(0))).
		Instruction(opcode.New(opcode.CALL, opcode.ProcessorRef(0))).
		Instruction(opcode.New(opcode.END)).
		MustBuild()
	prog := buildProgram(t, spec)

	ctx := NewContext(prog, []*processor.Processor{proc}, nil, nil, nil, nil, 1)
	if err := Run(ctx); err == nil {
		t.Fatal("expected error propagated from broken processor")
	}
	if proc.State() != processor.Broken {
		t.Fatalf("expected processor BROKEN, got %v", proc.State())
	}

	out, _ := prog.Buffer("out")
	for i := range out.Float32() {
		out.Float32()[i] = 9.0
	}
	if err := Run(ctx); err != nil {
		t.Fatalf("expected VM to continue rendering after processor goes BROKEN, got %v", err)
	}
	for _, v := range out.Float32() {
		if v != 0 {
			t.Errorf("expected silenced output after BROKEN, got %v", v)
		}
	}
}

func TestFetchControlValueWritesCurrentGeneration(t *testing.T) {
	cv := control.NewFloatControlValue("gain")
	cv.Write(0.75, 1)

	spec := specpkg.NewBuilder().
		WithBuffer("cv-out", buffer.FloatControlValueType).
		WithControlValue("gain").
		Instruction(opcode.New(opcode.FETCH_CONTROL_VALUE, opcode.ControlValueRef(0), opcode.BufferRef(0))).
		Instruction(opcode.New(opcode.END)).
		MustBuild()
	prog := buildProgram(t, spec)

	ctx := NewContext(prog, nil, []control.Value{cv}, nil, nil, nil, 1)
	if err := Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, _ := prog.Buffer("cv-out")
	value, generation := buffer.ReadValueGeneration(out.Region())
	if value != 0.75 || generation != 1 {
		t.Errorf("expected value=0.75 generation=1, got value=%v generation=%v", value, generation)
	}
}

func TestPostRMSPushesNodeMessage(t *testing.T) {
	spec := specpkg.NewBuilder().
		WithBuffer("samples", buffer.NewFloatAudioBlockType(4)).
		Instruction(opcode.New(opcode.SET_FLOAT, opcode.BufferRef(0), opcode.Float(1.0))).
		Instruction(opcode.New(opcode.POST_RMS, opcode.Int(0), opcode.Int(0), opcode.BufferRef(0))).
		Instruction(opcode.New(opcode.END)).
		MustBuild()
	prog := buildProgram(t, spec)
	out := msgqueue.New(64)

	ctx := NewContext(prog, nil, nil, nil, out, &perf.Stats{}, 1)
	if err := Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msgs := out.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly 1 out-message, got %d", len(msgs))
	}
	if msgs[0].Kind != msgqueue.KindNodeMessage {
		t.Errorf("expected KindNodeMessage, got %v", msgs[0].Kind)
	}
}

func TestSineIsUnimplemented(t *testing.T) {
	spec := specpkg.NewBuilder().
		WithBuffer("out", buffer.NewFloatAudioBlockType(4)).
		Instruction(opcode.New(opcode.SINE, opcode.BufferRef(0), opcode.Float(440))).
		MustBuild()
	prog := buildProgram(t, spec)

	ctx := NewContext(prog, nil, nil, nil, nil, nil, 1)
	err := Run(ctx)
	if err == nil {
		t.Fatal("expected SINE to report unimplemented")
	}
}

type countingBehavior struct {
	calls        int
	connectCalls int
	failOnCall   int
}

func (c *countingBehavior) SetupInternal(p *processor.Processor) error { return nil }

func (c *countingBehavior) ProcessBlockInternal(p *processor.Processor) error {
	c.calls++
	if c.failOnCall > 0 && c.calls == c.failOnCall {
		return status.Errorf("boom")
	}
	out := p.PortByName("out")
	if out != nil {
		view := out.Float32()
		for i := range view {
			view[i] = 1.0
		}
	}
	return nil
}

func (c *countingBehavior) HandleMessageInternal(p *processor.Processor, msg []byte) error {
	return nil
}

func (c *countingBehavior) SetParametersInternal(p *processor.Processor, params map[string]float64) error {
	return nil
}

func (c *countingBehavior) CleanupInternal(p *processor.Processor) {}
