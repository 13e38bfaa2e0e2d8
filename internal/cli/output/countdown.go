package output

import (
	"context"
	"fmt"
	"io"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
)

// Countdown renders a revealed secret and its remaining display time.
//
// On a terminal the line is redrawn in place and wiped when the window
// closes. Otherwise the secret is printed once.
type Countdown struct {
	w     io.Writer
	tty   bool
	total int
	bar   Bar
	drawn bool
}

// NewCountdown creates a renderer for a window of total seconds.
func NewCountdown(w io.Writer, tty bool, total int) *Countdown {
	if total <= 0 {
		total = domain.RevealSeconds
	}
	return &Countdown{w: w, tty: tty, total: total, bar: NewBar(total)}
}

// Render draws a Revealed view.
func (c *Countdown) Render(v domain.RedemptionView) {
	if v.State != domain.RedemptionRevealed || v.Result == nil {
		return
	}
	if !c.tty {
		if !c.drawn {
			fmt.Fprintf(c.w, "%s\npassword: %s\nvisible for %ds\n",
				identityLine(v.Result.Identity), v.Result.Secret, v.Window.RemainingSeconds)
			c.drawn = true
		}
		return
	}
	fmt.Fprintf(c.w, "\r\033[K%s | password: %s %s %2ds",
		identityLine(v.Result.Identity), v.Result.Secret,
		c.bar.Render(v.Window.RemainingSeconds, c.total), v.Window.RemainingSeconds)
	c.drawn = true
}

// Clear wipes the secret from a terminal line.
func (c *Countdown) Clear() {
	if c.tty && c.drawn {
		fmt.Fprint(c.w, "\r\033[K")
	}
	c.drawn = false
}

// Follow renders views until the window closes and returns the last one.
// When ctx ends first, dismiss is called and rendering continues until
// the closing view arrives.
func (c *Countdown) Follow(ctx context.Context, views <-chan domain.RedemptionView, dismiss func()) domain.RedemptionView {
	var last domain.RedemptionView
	revealed := false
	done := ctx.Done()

	for {
		select {
		case <-done:
			done = nil
			dismiss()
		case v, ok := <-views:
			if !ok {
				c.Clear()
				return last
			}
			last = v
			switch {
			case v.State == domain.RedemptionRevealed:
				revealed = true
				c.Render(v)
			case v.State == domain.RedemptionClosed, revealed:
				c.Clear()
				return v
			}
		}
	}
}

func identityLine(id domain.Identity) string {
	if id.Department != "" {
		return fmt.Sprintf("%s (%s, %s)", id.DisplayName(), id.Username, id.Department)
	}
	return fmt.Sprintf("%s (%s)", id.DisplayName(), id.Username)
}
