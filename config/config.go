package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Content   ContentConfig   `yaml:"content"`
	Script    ScriptConfig    `yaml:"script"`
	Voice     VoiceConfig     `yaml:"voice"`
	Subtitles SubtitlesConfig `yaml:"subtitles"`
	Assembly  AssemblyConfig  `yaml:"assembly"`
	Queue     QueueConfig     `yaml:"queue"`
	Paths     PathsConfig     `yaml:"paths"`
}

type ContentConfig struct {
	Provider      string   `yaml:"provider"` // auto | newsapi | reddit | ddgs
	Subreddits    []string `yaml:"subreddits"`
	UseMarketData bool     `yaml:"use_market_data"`
	TimeoutSec    int      `yaml:"timeout_sec"`
}

type ScriptConfig struct {
	GeminiModel    string  `yaml:"gemini_model"`
	Temperature    float64 `yaml:"temperature"`
	MaxRetries     int     `yaml:"max_retries"`
	RetryDelaySec  int     `yaml:"retry_delay_sec"`
	MinCharsPerSec float64 `yaml:"min_chars_per_sec"`
	MaxCharsPerSec float64 `yaml:"max_chars_per_sec"`
}

type VoiceConfig struct {
	Engine       string `yaml:"engine"` // edge-tts or a custom command
	DefaultVoice string `yaml:"default_voice"`
}

type SubtitlesConfig struct {
	Provider     string  `yaml:"provider"` // whisper
	WhisperModel string  `yaml:"whisper_model"`
	Font         string  `yaml:"font"`
	FontSize     int     `yaml:"font_size"`
	StrokeWidth  float64 `yaml:"stroke_width"`
	MarginBottom int     `yaml:"margin_bottom"`
}

type AssemblyConfig struct {
	FPS             int `yaml:"fps"`
	MaxClipDuration int `yaml:"max_clip_duration"`
	Threads         int `yaml:"threads"`
}

type QueueConfig struct {
	RedisAddr   string `yaml:"redis_addr"`
	Concurrency int    `yaml:"concurrency"`
}

type PathsConfig struct {
	Tasks     string `yaml:"tasks"`
	MediaRoot string `yaml:"media_root"`
	Logs      string `yaml:"logs"`
}

// Load reads and parses the YAML config file, applying defaults for
// anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a config usable without any file on disk.
func Default() *Config {
	return &Config{
		Content: ContentConfig{
			Provider:      "auto",
			Subreddits:    []string{"CryptoCurrency", "news"},
			UseMarketData: true,
			TimeoutSec:    30,
		},
		Script: ScriptConfig{
			GeminiModel:    "gemini-1.5-flash",
			Temperature:    0.7,
			MaxRetries:     5,
			RetryDelaySec:  2,
			MinCharsPerSec: 7.6,
			MaxCharsPerSec: 14.0,
		},
		Voice: VoiceConfig{
			Engine:       "edge-tts",
			DefaultVoice: "en-US-GuyNeural",
		},
		Subtitles: SubtitlesConfig{
			Provider:     "whisper",
			WhisperModel: "base",
			Font:         "Arial",
			FontSize:     60,
			StrokeWidth:  1.5,
			MarginBottom: 50,
		},
		Assembly: AssemblyConfig{
			FPS:             30,
			MaxClipDuration: 5,
			Threads:         2,
		},
		Queue: QueueConfig{
			RedisAddr:   "127.0.0.1:6379",
			Concurrency: 2,
		},
		Paths: PathsConfig{
			Tasks:     "tasks",
			MediaRoot: "local_media",
			Logs:      "logs",
		},
	}
}

// Timeout returns the provider call timeout as a duration.
func (c ContentConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// RetryDelay returns the fixed inter-attempt delay for generation retries.
func (c ScriptConfig) RetryDelay() time.Duration {
	if c.RetryDelaySec <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.RetryDelaySec) * time.Second
}
