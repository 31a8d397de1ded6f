package render

import "sort"

const maxKeyframes = 16

// keyframes caches pixel snapshots of replayed prefixes, keyed by prefix
// length. A snapshot for n is only valid while actions [0, n) are unchanged;
// callers report changes through invalidate.
type keyframes struct {
	interval int
	frames   map[int][]uint8
}

func newKeyframes(interval int) *keyframes {
	return &keyframes{interval: interval, frames: map[int][]uint8{}}
}

// due reports whether a snapshot should be taken after n actions.
func (k *keyframes) due(n int) bool {
	if k.interval <= 0 || n == 0 || n%k.interval != 0 {
		return false
	}
	_, ok := k.frames[n]
	return !ok
}

func (k *keyframes) store(n int, px []uint8) {
	k.frames[n] = px
	if len(k.frames) <= maxKeyframes {
		return
	}
	// keep the newest prefixes; replays mostly happen near the cursor
	lowest := -1
	for key := range k.frames {
		if lowest < 0 || key < lowest {
			lowest = key
		}
	}
	delete(k.frames, lowest)
}

// nearest returns the longest cached prefix not longer than n.
func (k *keyframes) nearest(n int) (int, []uint8) {
	best := -1
	for key := range k.frames {
		if key <= n && key > best {
			best = key
		}
	}
	if best < 0 {
		return 0, nil
	}
	return best, k.frames[best]
}

// invalidate drops snapshots covering index from or later.
func (k *keyframes) invalidate(from int) {
	for key := range k.frames {
		if key > from {
			delete(k.frames, key)
		}
	}
}

func (k *keyframes) reset() {
	clear(k.frames)
}

func (k *keyframes) keys() []int {
	out := make([]int, 0, len(k.frames))
	for key := range k.frames {
		out = append(out, key)
	}
	sort.Ints(out)
	return out
}
