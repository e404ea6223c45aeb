package progress

import (
	"math"
	"testing"
)

func TestParseLinePercent(t *testing.T) {
	cases := []struct {
		line string
		want float64
	}{
		{"0%|          | 0/100", 0},
		{"61%|██████    | [01:14<00:47,  1.96seconds/s]", 0.61},
		{"100%|██████████|", 0.99},
		{"  7% something", 0.07},
	}
	for _, tc := range cases {
		got := ParseLine(tc.line)
		if !got.HasFraction {
			t.Fatalf("%q: expected fraction", tc.line)
		}
		if math.Abs(got.Fraction-tc.want) > 1e-9 {
			t.Fatalf("%q: fraction %v, want %v", tc.line, got.Fraction, tc.want)
		}
	}
}

func TestParseLineFractionPair(t *testing.T) {
	got := ParseLine("146.25/239.85 [01:14<00:47,  1.96seconds/s]")
	if !got.HasFraction {
		t.Fatal("expected fraction")
	}
	want := 146.25 / 239.85
	if math.Abs(got.Fraction-want) > 1e-9 {
		t.Fatalf("fraction %v, want %v", got.Fraction, want)
	}
}

func TestParseLineZeroTotal(t *testing.T) {
	if got := ParseLine("5/0 processed"); got.HasFraction {
		t.Fatalf("zero total should not yield a fraction, got %v", got.Fraction)
	}
}

func TestParseLinePercentWinsOverFraction(t *testing.T) {
	got := ParseLine("40%| 146.25/239.85")
	if !got.HasFraction || got.Fraction != 0.40 {
		t.Fatalf("expected percentage to win, got %#v", got)
	}
}

func TestParseLineETA(t *testing.T) {
	cases := []struct {
		line string
		want int
	}{
		{"61%|██| [01:14<01:30,  1.96s/s]", 90},
		{"12%|██| [00:05<1:02:03,  1.96s/s]", 3723},
		{"90%|██| [10:00<00:00,  2.0s/s]", 0},
	}
	for _, tc := range cases {
		got := ParseLine(tc.line)
		if !got.HasETA {
			t.Fatalf("%q: expected ETA", tc.line)
		}
		if got.ETASeconds != tc.want {
			t.Fatalf("%q: eta %d, want %d", tc.line, got.ETASeconds, tc.want)
		}
	}
}

func TestParseLineETAWithoutFraction(t *testing.T) {
	got := ParseLine("processing [00:10<00:20, 1.0it/s]")
	if got.HasFraction {
		t.Fatal("did not expect a fraction")
	}
	if !got.HasETA || got.ETASeconds != 20 {
		t.Fatalf("expected ETA 20, got %#v", got)
	}
}

func TestParseLineGarbage(t *testing.T) {
	for _, line := range []string{"", "   ", "Selected model is a bag of 1 models", "Separating track song.mp3"} {
		if got := ParseLine(line); got.HasFraction || got.HasETA {
			t.Fatalf("%q: expected empty update, got %#v", line, got)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"01:30", 90, true},
		{"1:02:03", 3723, true},
		{"00:00", 0, true},
		{"90", 0, false},
		{"aa:bb", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseClock(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseClock(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
