package ffmpeg

// Config captures runtime settings for ffmpeg operations.
type Config struct {
	// Binary is the ffmpeg executable name or path.
	Binary string
}

// Audio processing constants.
const (
	// AnalysisSampleRate is the sample rate used for VAD and transcription input.
	AnalysisSampleRate = 16000
	// MP3Bitrate is the bitrate of exported narration mixes.
	MP3Bitrate = "192k"
	// MP3Codec is the encoder used for MP3 export.
	MP3Codec = "libmp3lame"
	// MinTempo and MaxTempo bound narration tempo adjustment. ffmpeg's
	// atempo filter accepts 0.5..2.0 in a single pass; narration stays
	// well inside that.
	MinTempo = 0.5
	MaxTempo = 2.0
)

// DefaultBinary is the executable used when Config.Binary is empty.
const DefaultBinary = "ffmpeg"
