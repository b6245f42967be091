package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

var leadTests = map[[2]time.Duration][2]time.Duration{
	{0, 2 * time.Second}:               {2 * time.Second, 0},
	{time.Second, 2 * time.Second}:     {time.Second, 0},
	{2 * time.Second, 2 * time.Second}: {0, 0},
	{5 * time.Second, 2 * time.Second}: {0, 3 * time.Second},
	{0, -50 * time.Millisecond}:        {0, 50 * time.Millisecond},
}

func TestLead(t *testing.T) {
	for in, expected := range leadTests {
		silence, seek := lead(in[0], in[1])
		if silence != expected[0] || seek != expected[1] {
			t.Errorf("lead(%v, %v) = %v, %v, expected %v, %v", in[0], in[1], silence, seek, expected[0], expected[1])
		}
	}
}

// tone is a constant non-zero signal so silence is easy to spot.
func tone(n int) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if n <= 0 {
			return 0, false
		}
		k := len(samples)
		if k > n {
			k = n
		}
		for i := 0; i < k; i++ {
			samples[i] = [2]float64{0.5, 0.5}
		}
		n -= k
		return k, true
	})
}

func writeWav(t *testing.T, rate beep.SampleRate, d time.Duration) string {
	p := filepath.Join(t.TempDir(), "song.wav")
	f, err := os.Create(p)
	if nil != err {
		t.Fatal(err)
	}
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	defer f.Close()
	if err := wav.Encode(f, tone(rate.N(d)), format); nil != err {
		t.Fatal(err)
	}
	return p
}

func drain(s beep.Streamer) (silent, loud int) {
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, sample := range buf[:n] {
			if sample[0] == 0 {
				silent++
			} else {
				loud++
			}
		}
		if !ok {
			return
		}
	}
}

func TestStreamLeadIn(t *testing.T) {
	rate := beep.SampleRate(8000)
	p, err := Open(writeWav(t, rate, time.Second), nil)
	if nil != err {
		t.Fatal(err)
	}
	defer p.Close()
	if p.Length() != time.Second {
		t.Errorf("length %v, expected 1s", p.Length())
	}

	s, err := p.stream(0, 500*time.Millisecond, 1)
	if nil != err {
		t.Fatal(err)
	}
	silent, loud := drain(s)
	if silent != rate.N(500*time.Millisecond) || loud != rate.N(time.Second) {
		t.Errorf("got %d silent and %d loud samples", silent, loud)
	}
}

func TestStreamResume(t *testing.T) {
	rate := beep.SampleRate(8000)
	p, err := Open(writeWav(t, rate, time.Second), nil)
	if nil != err {
		t.Fatal(err)
	}
	defer p.Close()

	s, err := p.stream(2250*time.Millisecond, 2*time.Second, 1)
	if nil != err {
		t.Fatal(err)
	}
	silent, loud := drain(s)
	if silent != 0 || loud != rate.N(750*time.Millisecond) {
		t.Errorf("got %d silent and %d loud samples", silent, loud)
	}
}

func TestStreamMuted(t *testing.T) {
	rate := beep.SampleRate(8000)
	p, err := Open(writeWav(t, rate, 100*time.Millisecond), nil)
	if nil != err {
		t.Fatal(err)
	}
	defer p.Close()

	s, err := p.stream(0, 0, 0)
	if nil != err {
		t.Fatal(err)
	}
	if _, loud := drain(s); loud != 0 {
		t.Errorf("muted stream produced %d samples", loud)
	}
}

func TestOpenUnsupported(t *testing.T) {
	p := filepath.Join(t.TempDir(), "song.flac")
	if err := os.WriteFile(p, []byte("fLaC"), 0o644); nil != err {
		t.Fatal(err)
	}
	if _, err := Open(p, nil); nil == err {
		t.Error("expected an error for an unsupported format")
	}
}
