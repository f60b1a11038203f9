package timeline

import (
	"fmt"

	"descant/internal/interval"
)

// MinNonDialogueDuration filters out detection noise: inverted gaps shorter
// than this are discarded.
const MinNonDialogueDuration = 0.5

// ComputeNonDialogue converts raw speech spans from voice-activity detection
// into the complementary non-dialogue spans over [0, totalDuration].
//
// Speech spans may arrive unsorted or overlapping; they are sorted and the
// complement tolerates overlap. Resulting spans shorter than
// MinNonDialogueDuration are dropped. The computation is deterministic and
// never mutates its input.
func ComputeNonDialogue(speech []interval.Span, totalDuration float64) ([]interval.Span, error) {
	if totalDuration <= 0 {
		return nil, fmt.Errorf("%w: got %.3f", ErrInvalidDuration, totalDuration)
	}
	sorted := interval.Sort(speech)
	free := interval.Invert(sorted, totalDuration)
	return interval.FilterMinDuration(free, MinNonDialogueDuration), nil
}
