package model

import "time"

// FFProbeOutput mirrors the subset of `ffprobe -print_format json` consumed
// when inspecting audio streams.
type FFProbeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate int    `json:"sample_rate,string"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// FileInfo describes a candidate input file discovered during a directory
// scan, ordered by modification time by the scanner.
type FileInfo struct {
	FullPath string
	ModTime  time.Time
	Name     string
}
