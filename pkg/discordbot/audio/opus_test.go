package audio

import "testing"

func TestEncodeProducesNonEmptyPayload(t *testing.T) {
	enc, err := NewEncoder()
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	pcm := make([]int16, SamplesPerFrame)
	payload, err := enc.Encode(pcm, SamplesPerChannel)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(payload) == 0 {
		t.Fatal("expected a non-empty Opus payload for a silent frame")
	}
}
