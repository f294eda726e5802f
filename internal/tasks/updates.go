package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	GeneratePlaylist Phase = iota
	DecodePlaylist
	ResolveTracks
	ValidatePlaylist
	SavePlaylist
	Completed
)

func (p Phase) String() string {
	switch p {
	case GeneratePlaylist:
		return "generate_playlist"
	case DecodePlaylist:
		return "decode_playlist"
	case ResolveTracks:
		return "resolve_tracks"
	case ValidatePlaylist:
		return "validate_playlist"
	case SavePlaylist:
		return "save_playlist"
	case Completed:
		return "completed"
	default:
		return ""
	}
}

// ProgressChannel adapts a progress channel to a [ProgressFunc]. Sends never block.
func ProgressChannel(ch chan<- ProgressUpdate) ProgressFunc {
	return func(done, total int) {
		sendProgress(ch, resolveUpdate(done, total))
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func generateUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   GeneratePlaylist,
		Step:    0,
		Total:   1,
		Message: "Generating playlist...",
	}
}

func decodeUpdate(records int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DecodePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Decoded %d records", records),
	}
}

func resolveUpdate(done, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    done,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolving tracks...", done, total),
	}
}

func validateUpdate(resolved int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ValidatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Validating %d records...", resolved),
	}
}

func saveUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SavePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saved playlist: %s", name),
	}
}

func completedUpdate(out *RunResult) ProgressUpdate {
	_, msg := out.Result.Summary()
	return ProgressUpdate{
		Phase:   Completed,
		Step:    len(out.Result.Resolved),
		Total:   len(out.Result.Resolved) + len(out.Result.Dropped),
		Message: msg,
		Data:    out,
	}
}
