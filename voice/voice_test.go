package voice

import "testing"

func TestParseVoiceName(t *testing.T) {
	cases := map[string]string{
		"en-US-GuyNeural-Male":     "en-US-GuyNeural",
		"en-US-JennyNeural-Female": "en-US-JennyNeural",
		"en-US-GuyNeural":          "en-US-GuyNeural",
		"  ko-KR-SunHiNeural  ":    "ko-KR-SunHiNeural",
		"":                         "",
	}
	for in, want := range cases {
		if got := ParseVoiceName(in); got != want {
			t.Fatalf("ParseVoiceName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRatePercent(t *testing.T) {
	cases := map[float64]string{
		1.5:  "+50%",
		1.25: "+25%",
		0.75: "-25%",
		1.0:  "+0%",
	}
	for in, want := range cases {
		if got := ratePercent(in); got != want {
			t.Fatalf("ratePercent(%v) = %q, want %q", in, got, want)
		}
	}
}
