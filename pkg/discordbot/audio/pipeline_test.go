package audio

import (
	"sync"
	"testing"
	"time"
)

type recordingSender struct {
	mu      sync.Mutex
	packets [][]byte
	sendAt  []time.Time
}

func (s *recordingSender) Send(packet []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := append([]byte{}, packet...)
	s.packets = append(s.packets, cp)
	s.sendAt = append(s.sendAt, time.Now())
	return nil
}

// fixedFrameSource returns exactly one full 20ms frame per call for the
// first limit calls and 0 (end-of-stream) afterwards (spec §8 property 5).
type fixedFrameSource struct {
	calls int
	limit int
}

func (s *fixedFrameSource) Read(buf []int16) int {
	s.calls++
	if s.calls > s.limit {
		return 0
	}
	return len(buf)
}

func TestPipelinePacingWithinTolerance(t *testing.T) {
	const frames = 50
	sender := &recordingSender{}
	source := &fixedFrameSource{limit: frames}

	p, err := NewPipeline(sender, 1, SecretKey{}, source)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	p.Run()

	sender.mu.Lock()
	defer sender.mu.Unlock()

	if len(sender.sendAt) < frames-1 {
		t.Fatalf("expected around %d frames sent, got %d", frames, len(sender.sendAt))
	}

	for i := 1; i < len(sender.sendAt); i++ {
		gap := sender.sendAt[i].Sub(sender.sendAt[i-1])
		if gap < 18*time.Millisecond || gap > 40*time.Millisecond {
			t.Fatalf("frame %d gap out of tolerance: %v", i, gap)
		}
	}
}

func TestPipelineStopBlocksUntilRunExits(t *testing.T) {
	sender := &recordingSender{}
	source := &fixedFrameSource{limit: 1_000_000}

	p, err := NewPipeline(sender, 1, SecretKey{}, source)
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}

	go p.Run()
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	select {
	case <-p.doneCh:
	default:
		t.Fatal("expected doneCh to be closed after Stop returns")
	}
}
