// Copyright (c) 2026 GenrA. All rights reserved.

package thread

const (
	// DefaultPageSize is how many threads each "view more" reveals.
	DefaultPageSize = 10
	// InitialReplies is how many replies a collapsed thread shows.
	InitialReplies = 2
)

// Pager slices already-fetched threads for display. It never fetches.
type Pager struct {
	PageSize int

	threads  []Thread
	shown    int
	expanded map[string]bool
}

// NewPager shows the first page of threads.
func NewPager(threads []Thread, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{
		PageSize: pageSize,
		threads:  threads,
		shown:    min(pageSize, len(threads)),
		expanded: make(map[string]bool),
	}
}

// Replace swaps in a re-assembled set, keeping how far the reader scrolled
// and which threads are expanded.
func (pager *Pager) Replace(threads []Thread) {
	pager.threads = threads
	pager.shown = min(max(pager.shown, pager.PageSize), len(threads))
}

// Visible returns the revealed threads with collapsed threads trimmed to
// their first replies.
func (pager *Pager) Visible() []Thread {
	visible := make([]Thread, 0, pager.shown)
	for _, thread := range pager.threads[:pager.shown] {
		if !pager.expanded[thread.Root.ID] && len(thread.Replies) > InitialReplies {
			thread.Replies = thread.Replies[:InitialReplies]
		}
		visible = append(visible, thread)
	}
	return visible
}

// More reveals the next page.
func (pager *Pager) More() {
	pager.shown = min(pager.shown+pager.PageSize, len(pager.threads))
}

// HasMore reports whether threads remain hidden.
func (pager *Pager) HasMore() bool {
	return pager.shown < len(pager.threads)
}

// Total is the number of threads, shown or not.
func (pager *Pager) Total() int {
	return len(pager.threads)
}

// Expand shows every reply of the thread rooted at rootID.
func (pager *Pager) Expand(rootID string) {
	pager.expanded[rootID] = true
}

// HiddenReplies counts replies still collapsed under rootID.
func (pager *Pager) HiddenReplies(rootID string) int {
	if pager.expanded[rootID] {
		return 0
	}
	for _, thread := range pager.threads {
		if thread.Root.ID == rootID {
			return max(len(thread.Replies)-InitialReplies, 0)
		}
	}
	return 0
}
