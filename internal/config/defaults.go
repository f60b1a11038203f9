package config

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   "~/.local/share/descant/work",
			OutputDir: "~/Videos/described",
			LogDir:    "~/.local/share/descant/logs",
		},
		Media: Media{
			FFmpegBinary:  "ffmpeg",
			FFprobeBinary: "ffprobe",
		},
		VAD: VAD{
			ModelPath: "~/.local/share/descant/models/silero_vad.onnx",
			Threshold: 0.5,
		},
		Transcription: Transcription{
			Backend:        "local",
			Model:          "small",
			Language:       "en",
			TimeoutSeconds: 1800,
		},
		Caption: Caption{
			BaseURL:        "https://openrouter.ai/api/v1",
			Model:          "qwen/qwen2.5-vl-72b-instruct",
			TimeoutSeconds: 120,
			FramesPerScene: 3,
		},
		TTS: TTS{
			Binary: "tts",
			Model:  "tts_models/en/ljspeech/tacotron2-DDC",
		},
		Mix: Mix{
			BackgroundReductionDB: -15.0,
			NarrationAdjustDB:     0.0,
			MinNarrationGap:       0.5,
		},
		Logging: Logging{
			Format: "auto",
			Level:  "info",
		},
	}
}
