package types

// SourceItem is the single piece of source content selected to ground
// script generation. An empty Body means no external content was found and
// the script is generated from generic knowledge.
type SourceItem struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// MarketSnapshot holds optional market metrics for a resolved asset.
// Nil fields are simply omitted from the rendered reference line.
type MarketSnapshot struct {
	Price     *float64 `json:"price"`
	Change24h *float64 `json:"change_24h"`
	Change7d  *float64 `json:"change_7d"`
	MarketCap *float64 `json:"market_cap"`
	Volume    *float64 `json:"volume"`
}

// SubtitleSegment is one timed span of subtitle text.
type SubtitleSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the segment length in seconds, 0 when the range is
// degenerate.
func (s SubtitleSegment) Duration() float64 {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// MaterialInfo is a visual asset assigned to a subtitle segment.
type MaterialInfo struct {
	URL      string  `json:"url"`
	Duration float64 `json:"duration"`
}

// ConcatMode controls clip ordering when combining the timeline.
type ConcatMode string

const (
	ConcatSequential ConcatMode = "sequential"
	ConcatRandom     ConcatMode = "random"
)

// TransitionMode selects the transition family between clips.
type TransitionMode string

const (
	TransitionNone     TransitionMode = "none"
	TransitionShuffle  TransitionMode = "shuffle"
	TransitionFadeIn   TransitionMode = "fade_in"
	TransitionFadeOut  TransitionMode = "fade_out"
	TransitionSlideIn  TransitionMode = "slide_in"
	TransitionSlideOut TransitionMode = "slide_out"
)

// VideoParams is the read-only request bundle consumed by every pipeline
// stage. Stages never mutate it.
type VideoParams struct {
	Subject         string         `json:"subject"`
	Language        string         `json:"language"`
	VideoCount      int            `json:"video_count"`
	ClipDuration    int            `json:"clip_duration"`
	SubtitleEnabled bool           `json:"subtitle_enabled"`
	VoiceName       string         `json:"voice_name"`
	VoiceRate       float64        `json:"voice_rate"`
	ConcatMode      ConcatMode     `json:"concat_mode"`
	TransitionMode  TransitionMode `json:"transition_mode"`
	Aspect          string         `json:"aspect"`
	TargetSeconds   int            `json:"target_seconds"`
}

// Normalized returns a copy with defaults filled in for zero-valued fields.
func (p VideoParams) Normalized() VideoParams {
	if p.Language == "" {
		p.Language = "en-US"
	}
	if p.VideoCount <= 0 {
		p.VideoCount = 1
	}
	if p.ClipDuration <= 0 {
		p.ClipDuration = 5
	}
	if p.VoiceRate <= 0 {
		p.VoiceRate = 1.0
	}
	if p.ConcatMode == "" {
		p.ConcatMode = ConcatSequential
	}
	if p.TransitionMode == "" {
		p.TransitionMode = TransitionNone
	}
	if p.Aspect == "" {
		p.Aspect = "9:16"
	}
	if p.TargetSeconds <= 0 {
		p.TargetSeconds = 50
	}
	return p
}
