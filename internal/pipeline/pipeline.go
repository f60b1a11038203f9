package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"descant/internal/config"
	"descant/internal/describer"
	"descant/internal/logging"
	"descant/internal/mix"
	"descant/internal/narration"
	"descant/internal/queue"
	"descant/internal/services"
	"descant/internal/services/caption"
	"descant/internal/services/ffmpeg"
	"descant/internal/services/tts"
	"descant/internal/services/vad"
	"descant/internal/services/whisper"
	"descant/internal/stage"
	"descant/internal/stageexec"
)

// lockFileName guards against concurrent pipeline runs sharing a work tree.
const lockFileName = "descant.lock"

type stageDef struct {
	name       string
	processing queue.Status
	done       queue.Status
	handler    stage.Handler
}

// Pipeline owns the stage handlers and drives queue items from pending to
// completed, one stage transition at a time.
type Pipeline struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	stages []stageDef
	lock   *flock.Flock
}

// New wires the concrete services from configuration and returns a ready
// pipeline. The queue store and logger are shared with the caller.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Pipeline {
	media := ffmpeg.NewService(ffmpeg.Config{Binary: cfg.Media.FFmpegBinary})

	detector := vad.NewService(vad.Config{
		ModelPath: cfg.VAD.ModelPath,
		Threshold: cfg.VAD.Threshold,
	})

	transcriber := whisper.NewService(whisper.Config{
		Backend:     cfg.Transcription.Backend,
		Model:       cfg.Transcription.Model,
		Language:    cfg.Transcription.Language,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
		APIKey:      cfg.Transcription.APIKey,
		APIEndpoint: cfg.Transcription.APIEndpoint,
		Timeout:     time.Duration(cfg.Transcription.TimeoutSeconds) * time.Second,
	})

	captioner := caption.NewClient(caption.Config{
		APIKey:         cfg.Caption.APIKey,
		BaseURL:        cfg.Caption.BaseURL,
		Model:          cfg.Caption.Model,
		TimeoutSeconds: cfg.Caption.TimeoutSeconds,
	})

	synth := tts.NewService(tts.Config{
		Binary:  cfg.TTS.Binary,
		Model:   cfg.TTS.Model,
		Speaker: cfg.TTS.Speaker,
		UseCUDA: cfg.TTS.UseCUDA,
	}, media)

	scenes := describer.New(media, captioner,
		describer.WithFramesPerScene(cfg.Caption.FramesPerScene),
		describer.WithLogger(logger))
	narrator := narration.New(synth, logger)
	mixer := mix.New(mix.WithLogger(logger), mix.WithTranscoder(media.MixTranscoder()))

	return &Pipeline{
		cfg:    cfg,
		store:  store,
		logger: logger,
		stages: []stageDef{
			{"extract", queue.StatusExtracting, queue.StatusExtracted, newExtractHandler(cfg, media, logger)},
			{"analyze", queue.StatusAnalyzing, queue.StatusAnalyzed, newAnalyzeHandler(cfg, detector, transcriber, logger)},
			{"segment", queue.StatusSegmenting, queue.StatusSegmented, newSegmentHandler(logger)},
			{"narrate", queue.StatusNarrating, queue.StatusNarrated, newNarrateHandler(cfg, scenes, narrator, logger)},
			{"mix", queue.StatusMixing, queue.StatusCompleted, newMixHandler(cfg, mixer, logger)},
		},
		lock: flock.New(filepath.Join(cfg.Paths.LogDir, lockFileName)),
	}
}

// Process runs the remaining stages for one queue item. Items resume from
// their recorded status, so an interrupted run picks up where it stopped.
// Only one Process call may run at a time per installation; a file lock in
// the log directory enforces this across processes.
func (p *Pipeline) Process(ctx context.Context, item *queue.Item) error {
	return p.ProcessUntil(ctx, item, "")
}

// ProcessUntil runs stages up to and including lastStage, or every remaining
// stage when lastStage is empty.
func (p *Pipeline) ProcessUntil(ctx context.Context, item *queue.Item, lastStage string) error {
	locked, err := p.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire pipeline lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another run already holds %s", p.lock.Path())
	}
	defer func() {
		if unlockErr := p.lock.Unlock(); unlockErr != nil {
			p.logger.Warn("release pipeline lock failed", logging.Error(unlockErr))
		}
	}()

	ctx = services.WithItemID(ctx, item.ID)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	runLogger := logging.WithContext(ctx, p.logger)

	start, err := p.stageIndexFor(item.Status)
	if err != nil {
		return err
	}
	end := len(p.stages)
	if lastStage != "" {
		idx := -1
		for i, def := range p.stages {
			if def.name == lastStage {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("unknown stage %q", lastStage)
		}
		end = idx + 1
	}
	if start >= end {
		runLogger.Info("nothing to do", logging.String("title", item.Title),
			logging.String("status", string(item.Status)))
		return nil
	}

	runLogger.Info("processing item",
		logging.String("source", item.SourcePath),
		logging.String("from_status", string(item.Status)))

	for _, def := range p.stages[start:end] {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := stageexec.Run(ctx, stageexec.Options{
			Logger:     p.logger,
			Store:      p.store,
			Handler:    def.handler,
			StageName:  def.name,
			Processing: def.processing,
			Done:       def.done,
			Item:       item,
		})
		if err != nil {
			return fmt.Errorf("stage %s: %w", def.name, err)
		}
	}

	if item.Status == queue.StatusCompleted {
		runLogger.Info("item completed", logging.String("output", item.OutputPath))
	} else {
		runLogger.Info("run stopped", logging.String("status", string(item.Status)))
	}
	return nil
}

// stageIndexFor maps a queue status to the next stage to run. A processing
// status restarts its own stage, matching the rollback semantics the store
// applies to stale items.
func (p *Pipeline) stageIndexFor(status queue.Status) (int, error) {
	switch status {
	case queue.StatusPending, "":
		return 0, nil
	case queue.StatusCompleted:
		return len(p.stages), nil
	case queue.StatusFailed, queue.StatusReview:
		return 0, fmt.Errorf("item is %s and needs a reset before reprocessing", status)
	}
	for i, def := range p.stages {
		if status == def.processing {
			return i, nil
		}
		if status == def.done {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unknown queue status %q", status)
}

// Health probes every stage dependency without touching the queue.
func (p *Pipeline) Health(ctx context.Context) []stage.Health {
	results := make([]stage.Health, 0, len(p.stages))
	for _, def := range p.stages {
		results = append(results, def.handler.HealthCheck(ctx))
	}
	return results
}
