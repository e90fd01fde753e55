package subtitle

import (
	"testing"
)

func TestCorrectRespellsFromScript(t *testing.T) {
	srt := "1\n00:00:00,000 --> 00:00:02,000\nbit coin hits new\n\n" +
		"2\n00:00:02,000 --> 00:00:04,000\nhigh this weak\n\n"
	path := writeTempSRT(t, srt)

	Correct(path, "Bitcoin hits a new high this week")

	segments := ParseFile(path)
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(segments))
	}
	if segments[0].Text != "Bitcoin hits a new" {
		t.Fatalf("text[0] = %q", segments[0].Text)
	}
	if segments[1].Text != "high this week" {
		t.Fatalf("text[1] = %q", segments[1].Text)
	}
	// Timing is preserved.
	if segments[1].Start != 2 || segments[1].End != 4 {
		t.Fatalf("timing changed: %+v", segments[1])
	}
}

func TestCorrectSkipsOnWordCountDrift(t *testing.T) {
	srt := "1\n00:00:00,000 --> 00:00:02,000\nonly three words\n\n"
	path := writeTempSRT(t, srt)

	Correct(path, "this reference script has far too many words to line up with the transcription")

	segments := ParseFile(path)
	if segments[0].Text != "only three words" {
		t.Fatalf("text = %q, want untouched", segments[0].Text)
	}
}

func TestCorrectHandlesMissingFile(t *testing.T) {
	// Should not panic or create anything.
	Correct("", "some script")
	Correct("/nonexistent/sub.srt", "some script")
}
