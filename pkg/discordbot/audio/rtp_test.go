package audio

import "testing"

func TestFramerSequenceStartsAtOne(t *testing.T) {
	f := NewFramer(1234)

	_, seq, ts, err := f.NextHeader(SamplesPerChannel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq != 1 {
		t.Fatalf("expected first sequence number 1, got %d", seq)
	}
	if ts != 0 {
		t.Fatalf("expected first timestamp 0, got %d", ts)
	}
}

func TestFramerAdvancesMonotonically(t *testing.T) {
	f := NewFramer(1234)

	_, seq1, ts1, _ := f.NextHeader(SamplesPerChannel)
	_, seq2, ts2, _ := f.NextHeader(SamplesPerChannel)

	if seq2 != seq1+1 {
		t.Fatalf("expected sequence to advance by 1, got %d -> %d", seq1, seq2)
	}
	if ts2 != ts1+SamplesPerChannel {
		t.Fatalf("expected timestamp to advance by %d, got %d -> %d", SamplesPerChannel, ts1, ts2)
	}
}

func TestNextHeaderMarshalsFixedSizeRTPHeader(t *testing.T) {
	f := NewFramer(42)
	header, _, _, err := f.NextHeader(SamplesPerChannel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(header) != 12 {
		t.Fatalf("expected a 12-byte RTP header, got %d bytes", len(header))
	}
	if header[1] != PayloadType {
		t.Fatalf("expected payload type %d in header byte 1, got %d", PayloadType, header[1])
	}
}
