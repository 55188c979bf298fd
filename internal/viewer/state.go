package viewer

import (
	"errors"
	"time"
)

const (
	// CopyWindow is how long the "Copied!" acknowledgment lasts.
	CopyWindow = 2 * time.Second
	// RatingDelay is the wait between first render and the rating prompt.
	RatingDelay = 3 * time.Second
)

var (
	ErrRatingRequired = errors.New("please select a rating")
	ErrInvalidRating  = errors.New("rating must be between 1 and 5")
	ErrPromptNotOpen  = errors.New("rating prompt is not open")
)

// Clipboard tracks the copy acknowledgment. Each copy restarts the window.
type Clipboard struct {
	until time.Time
}

func (c *Clipboard) Copy(now time.Time) {
	c.until = now.Add(CopyWindow)
}

// Copied is true strictly before the window ends.
func (c Clipboard) Copied(now time.Time) bool {
	return now.Before(c.until)
}

// Until is the end of the current window; zero when nothing was copied.
func (c Clipboard) Until() time.Time {
	return c.until
}

type promptStatus int

const (
	promptWaiting promptStatus = iota
	promptOpen
	promptClosed
)

// RatingPrompt opens once, RatingDelay after the first render, and closes
// for good when answered or skipped.
type RatingPrompt struct {
	renderedAt time.Time
	status     promptStatus
	rating     int
}

func NewRatingPrompt(renderedAt time.Time) RatingPrompt {
	return RatingPrompt{renderedAt: renderedAt}
}

// Poll opens the prompt when its delay has passed and reports whether it is
// open.
func (p *RatingPrompt) Poll(now time.Time) bool {
	if p.status == promptWaiting && !now.Before(p.renderedAt.Add(RatingDelay)) {
		p.status = promptOpen
	}
	return p.status == promptOpen
}

// OpensAt is when a waiting prompt will open.
func (p *RatingPrompt) OpensAt() time.Time {
	return p.renderedAt.Add(RatingDelay)
}

// Submit records a 1 to 5 star rating and closes the prompt. A zero rating
// leaves the prompt open.
func (p *RatingPrompt) Submit(rating int) error {
	if p.status != promptOpen {
		return ErrPromptNotOpen
	}
	if rating == 0 {
		return ErrRatingRequired
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	p.rating = rating
	p.status = promptClosed
	return nil
}

// Skip closes the prompt without a rating. Skipping before it opens stops it
// from ever opening.
func (p *RatingPrompt) Skip() {
	p.status = promptClosed
}

// Rating is the submitted value, or 0.
func (p *RatingPrompt) Rating() int {
	return p.rating
}

func (p *RatingPrompt) Closed() bool {
	return p.status == promptClosed
}
