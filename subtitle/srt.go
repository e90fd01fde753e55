package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"newsclip-pipeline/types"
)

// ParseFile reads an SRT file into ordered subtitle segments. A missing or
// malformed file yields an empty slice, never an error: callers treat empty
// segments as "no segment-level guidance available".
func ParseFile(path string) []types.SubtitleSegment {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var segments []types.SubtitleSegment
	scanner := bufio.NewScanner(f)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	for i := 0; i < len(lines); {
		if !isIndexLine(lines[i]) || i+1 >= len(lines) {
			i++
			continue
		}

		start, end, err := parseTimeRange(lines[i+1])
		if err != nil {
			i++
			continue
		}

		// Collect text lines until the blank separator.
		var text []string
		j := i + 2
		for ; j < len(lines) && strings.TrimSpace(lines[j]) != ""; j++ {
			text = append(text, strings.TrimSpace(lines[j]))
		}
		if len(text) > 0 && end > start {
			segments = append(segments, types.SubtitleSegment{
				Start: start,
				End:   end,
				Text:  strings.Join(text, " "),
			})
		}
		i = j + 1
	}
	return segments
}

func isIndexLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	_, err := strconv.Atoi(line)
	return err == nil
}

// parseTimeRange parses "HH:MM:SS,mmm --> HH:MM:SS,mmm" into seconds.
func parseTimeRange(line string) (float64, float64, error) {
	parts := strings.Split(strings.TrimSpace(line), " --> ")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed time range: %q", line)
	}
	start, err := timecodeSeconds(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := timecodeSeconds(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// timecodeSeconds converts "HH:MM:SS,mmm" (or with a dot) to seconds.
func timecodeSeconds(tc string) (float64, error) {
	tc = strings.TrimSpace(strings.ReplaceAll(tc, ",", "."))
	fields := strings.Split(tc, ":")
	if len(fields) != 3 {
		return 0, fmt.Errorf("malformed timecode: %q", tc)
	}
	hours, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, err
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}
