package playback

import "podplay/internal/domain"

// Queue is the ordered "up next" list with a pointer at the active entry.
// currentIndex is -1 when nothing is active. Invariant: a non-negative
// currentIndex always references a valid slot.
type Queue struct {
	episodes     []domain.Episode
	currentIndex int
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{currentIndex: -1}
}

// Current returns a copy of the active episode, or nil if none.
func (q *Queue) Current() *domain.Episode {
	if q.currentIndex < 0 || q.currentIndex >= len(q.episodes) {
		return nil
	}
	ep := q.episodes[q.currentIndex]
	return &ep
}

// CurrentIndex returns the index of the active episode (-1 if none).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// At returns a copy of the episode at index, or nil if out of range.
func (q *Queue) At(index int) *domain.Episode {
	if index < 0 || index >= len(q.episodes) {
		return nil
	}
	ep := q.episodes[index]
	return &ep
}

// IndexOf returns the slot holding the episode with the given id, or -1.
// Ids are unique within the queue.
func (q *Queue) IndexOf(id string) int {
	for i, ep := range q.episodes {
		if ep.ID == id {
			return i
		}
	}
	return -1
}

// Append adds an episode at the end without touching the pointer.
func (q *Queue) Append(ep domain.Episode) {
	q.episodes = append(q.episodes, ep)
}

// SetCurrent moves the pointer to index. Returns the episode there, or nil
// (pointer unchanged) if the index is out of range.
func (q *Queue) SetCurrent(index int) *domain.Episode {
	if index < 0 || index >= len(q.episodes) {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// HasNext reports whether an entry follows the active one.
func (q *Queue) HasNext() bool {
	return q.currentIndex >= 0 && q.currentIndex < len(q.episodes)-1
}

// HasPrevious reports whether an entry precedes the active one.
func (q *Queue) HasPrevious() bool {
	return q.currentIndex > 0
}

// RemoveAt removes the entry at index and adjusts the pointer: entries before
// the active one shift it down by one, removing the active entry resets the
// pointer to -1 (playback of a removed episode does not auto-advance).
// Out-of-range indices are a no-op. Returns (removed, removedCurrent).
func (q *Queue) RemoveAt(index int) (bool, bool) {
	if index < 0 || index >= len(q.episodes) {
		return false, false
	}
	removedCurrent := index == q.currentIndex
	q.episodes = append(q.episodes[:index], q.episodes[index+1:]...)
	switch {
	case removedCurrent:
		q.currentIndex = -1
	case index < q.currentIndex:
		q.currentIndex--
	}
	return true, removedCurrent
}

// Clear removes all entries and resets the pointer.
func (q *Queue) Clear() {
	q.episodes = nil
	q.currentIndex = -1
}

// Episodes returns a copy of all entries in order.
func (q *Queue) Episodes() []domain.Episode {
	out := make([]domain.Episode, len(q.episodes))
	copy(out, q.episodes)
	return out
}

// Len returns the number of entries.
func (q *Queue) Len() int {
	return len(q.episodes)
}

// IsEmpty reports whether the queue has no entries.
func (q *Queue) IsEmpty() bool {
	return len(q.episodes) == 0
}
