package receiver

import (
	"sync"
	"testing"
	"time"

	"github.com/dabreceiver/dab/internal/config"
	"github.com/dabreceiver/dab/internal/frontend"
)

type nullLogger struct{}

func (nullLogger) SetLevel(int8)                                  {}
func (nullLogger) Log(level int8, msg string, params ...interface{}) {}

// fakeSource produces one zeroed raw buffer per Read and never reaches
// EOF, enough to exercise the run loop's dispatch without real samples.
type fakeSource struct {
	mu      sync.Mutex
	running bool
}

func (s *fakeSource) Name() string { return "fake" }
func (s *fakeSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	return nil
}
func (s *fakeSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}
func (s *fakeSource) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
func (s *fakeSource) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestStartStopLifecycle(t *testing.T) {
	r := New(config.Defaults(), nullLogger{}, &fakeSource{})
	if r.Running() {
		t.Fatal("receiver reports running before Start")
	}
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !r.Running() {
		t.Fatal("receiver reports not running after Start")
	}
	time.Sleep(10 * time.Millisecond)
	r.Stop()
	if r.Running() {
		t.Fatal("receiver reports running after Stop")
	}
}

func TestEnsembleStartsEmpty(t *testing.T) {
	r := New(config.Defaults(), nullLogger{}, &fakeSource{})
	ens := r.Ensemble()
	if ens == nil {
		t.Fatal("Ensemble() returned nil")
	}
	if len(ens.Services()) != 0 {
		t.Fatalf("expected no services before any FIC decode, got %d", len(ens.Services()))
	}
}

func TestSelectBeforeServiceKnownDoesNotPanic(t *testing.T) {
	r := New(config.Defaults(), nullLogger{}, &fakeSource{})
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop()
	if err := r.Select("e1"); err != nil {
		t.Fatalf("Select: %v", err)
	}
}

var _ frontend.Source = (*fakeSource)(nil)

// controlSource is a fakeSource that also implements frontend.ControlSender,
// recording every message it is asked to send so a test can assert the
// receiver actually reaches the tuner control path.
type controlSource struct {
	fakeSource
	mu       sync.Mutex
	tunes    int
	timings  int
	regs     int
}

func (s *controlSource) SendTune(msg [frontend.TuneLen]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tunes++
	return nil
}

func (s *controlSource) SendTiming(msg [frontend.TimingLen]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timings++
	return nil
}

func (s *controlSource) SendRegisterWrite(msg [frontend.RegisterWriteLen]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs++
	return nil
}

func (s *controlSource) counts() (tunes, timings, regs int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tunes, s.timings, s.regs
}

func TestStartSendsTuneSequenceToControlSender(t *testing.T) {
	src := &controlSource{}
	r := New(config.Defaults(), nullLogger{}, src)
	if err := r.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer r.Stop()

	tunes, _, _ := src.counts()
	if tunes != 6 {
		t.Fatalf("tunes sent = %d, want 6", tunes)
	}
}

func TestDecodePRSWithholdsControlTrafficUntilCycleComplete(t *testing.T) {
	src := &controlSource{}
	r := New(config.Defaults(), nullLogger{}, src)

	raw := make([]byte, frontend.RawBufferLen)
	raw[9] = frontend.PayloadKindPRS

	// Three of the four PRS sub-blocks: the accumulator isn't ready yet,
	// so the synchroniser must never run and no control message can
	// have been sent.
	for block := 0; block < 3; block++ {
		raw[7] = byte(block)
		rb, err := frontend.ParseRawBuffer(raw)
		if err != nil {
			t.Fatalf("ParseRawBuffer: %v", err)
		}
		r.dispatch(rb)
	}
	if tunes, timings, regs := src.counts(); timings != 0 || regs != 0 {
		t.Fatalf("counts after partial cycle = tunes=%d timings=%d regs=%d, want timings=0 regs=0", tunes, timings, regs)
	}

	// The fourth sub-block completes the cycle and routes the symbol
	// through the synchroniser and control-plan dispatch; this must not
	// panic regardless of whether the all-zero payload happens to lock.
	raw[7] = 3
	rb, err := frontend.ParseRawBuffer(raw)
	if err != nil {
		t.Fatalf("ParseRawBuffer: %v", err)
	}
	r.dispatch(rb)
}
