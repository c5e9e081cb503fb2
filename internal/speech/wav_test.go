package speech

import (
	"encoding/binary"
	"testing"
)

func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func samples16(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

func TestEncodeExtractRoundTrip(t *testing.T) {
	pcm := pcm16(1, -2, 300, -400)
	wav := encodeWAV(pcm, SampleRate, ChannelCount)
	if len(wav) != 44+len(pcm) {
		t.Fatalf("expected %d bytes, got %d", 44+len(pcm), len(wav))
	}
	got, err := extractPCM(wav)
	if err != nil {
		t.Fatalf("extractPCM: %v", err)
	}
	if string(got) != string(pcm) {
		t.Fatalf("pcm mismatch: %v vs %v", got, pcm)
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != SampleRate {
		t.Fatalf("expected sample rate %d, got %d", SampleRate, rate)
	}
}

func TestExtractPCMRejectsGarbage(t *testing.T) {
	if _, err := extractPCM([]byte("short")); err == nil {
		t.Fatal("expected error for short data")
	}
	bad := make([]byte, 64)
	copy(bad, "JUNK")
	if _, err := extractPCM(bad); err == nil {
		t.Fatal("expected error for non-RIFF data")
	}
}

func TestDownmixStereo(t *testing.T) {
	got := samples16(downmixStereo(pcm16(100, 200, -50, -150)))
	want := []int16{150, -100}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResampleMono(t *testing.T) {
	in := pcm16(0, 100, 200, 300)

	same := resampleMono(in, 24000, 24000)
	if string(same) != string(in) {
		t.Fatal("same rate should be a no-op")
	}

	down := samples16(resampleMono(in, 48000, 24000))
	if len(down) != 2 || down[0] != 0 || down[1] != 200 {
		t.Fatalf("unexpected downsample: %v", down)
	}

	up := samples16(resampleMono(in, 12000, 24000))
	if len(up) != 8 || up[1] != 50 {
		t.Fatalf("unexpected upsample: %v", up)
	}
}
