// Package timeline maps parent time to local time and orders the time-scoped
// items of one composition level.
package timeline

// Epsilon absorbs float error from frame times computed as i/fps, so an
// item starting at 6s is active at frame 180 of a 30fps render.
const Epsilon = 1e-9

// LocalTime converts a parent's local time into a child's local time.
func LocalTime(parentLocal, start float64) float64 {
	return parentLocal - start
}

// Resolve returns the local time of a node starting at start and lasting
// duration, and whether the node is active. Windows are start-inclusive and
// end-exclusive. The local time is returned even for inactive nodes.
func Resolve(parentLocal, start, duration float64) (float64, bool) {
	local := parentLocal - start
	return local, Active(local, duration)
}

// Active reports whether local lies in [0, duration).
func Active(local, duration float64) bool {
	return local >= -Epsilon && local < duration-Epsilon
}

// Clamp limits a local time to the presentable range of a node, [0, duration).
// Used when a node is drawn slightly outside its own window, as during a
// transition.
func Clamp(local, duration float64) float64 {
	if local < 0 {
		return 0
	}
	if duration > 0 && local >= duration {
		// Last presentable instant before the end.
		return max(duration-1e-6, 0)
	}
	return local
}

// FrameTime returns the global time of frame index at the given rate.
func FrameTime(index, fps int) float64 {
	return float64(index) / float64(fps)
}

// FrameCount returns the number of frames needed to cover duration seconds.
func FrameCount(duration float64, fps int) int {
	if duration <= 0 || fps <= 0 {
		return 0
	}
	n := int(duration*float64(fps) + 0.5)
	return max(n, 1)
}
