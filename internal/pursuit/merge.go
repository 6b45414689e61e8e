package pursuit

import (
	"log/slog"

	"github.com/udisondev/pursuit/internal/ai"
	"github.com/udisondev/pursuit/internal/model"
)

// MergeTick consumes a Transferred candidate batch. It clears or trims the
// suspicion container, demotes lost direct targets to suspicion points,
// appends the new candidates and marks the batch Processed.
func (c *Controller) MergeTick() {
	if !c.active || c.state == model.StateDead || c.perception.State() != model.DataTransferred {
		return
	}

	c.mergeSuspicion()
	c.mergeDirect()

	added := 0
	for _, cand := range c.perception.Candidates() {
		switch cand.Kind {
		case model.KindDirectTarget:
			if !c.direct.Contains(cand.Anchor, cand.Kind) {
				c.direct.Add(cand)
				added++
			}
		case model.KindSuspicion:
			if !c.suspicion.Contains(cand.Anchor, cand.Kind) {
				c.suspicion.Add(cand)
				added++
			}
		}
	}

	c.perception.MarkProcessed()

	if ai.IsDebugEnabled() {
		slog.Debug("candidates merged",
			"agentID", c.id,
			"added", added,
			"direct", c.direct.Len(),
			"suspicion", c.suspicion.Len(),
			"state", c.state)
	}
}

func (c *Controller) mergeSuspicion() {
	if c.perception.SuspicionDetected() {
		// a dwell belongs to the batch it was started for
		c.cancelPendingOf(resumeSuspicion)
		c.suspicion.Clear()
		c.suspicion.ResetCursor()
		if c.state == model.StateFollowingSuspicion {
			c.cursor = -1
			c.reselect = true
		}
		return
	}

	switch c.state {
	case model.StateFollowingSuspicion:
		// keep the investigated point only
		c.suspicion.KeepOnly(&c.cursor)
	case model.StateWaiting:
	default:
		c.suspicion.Clear()
		c.suspicion.ResetCursor()
		c.reselect = true
	}
}

func (c *Controller) mergeDirect() {
	if c.perception.DirectDetected() {
		chasing := c.state == model.StateFollowingTarget
		for i := 0; i < c.direct.Len(); i++ {
			p := c.direct.At(i)
			if c.inCandidates(p.Anchor, p.Kind) {
				continue
			}

			c.suspicion.Add(c.demote(p))
			if chasing && i == c.cursor {
				c.reselect = true
			}
			c.direct.RemoveAt(i)
			if chasing && c.cursor > i {
				c.cursor--
			}
			i--
		}
		return
	}

	if c.direct.Len() == 0 {
		return
	}

	if c.state == model.StateFollowingTarget {
		// the chased target was lost: investigate its last position
		c.direct.KeepOnly(&c.cursor)
		if p := c.direct.At(c.cursor); p != nil {
			c.suspicion.AddTracked(c.demote(p), &c.cursor)
			c.setState(model.StateFollowingSuspicion)
		}
		c.direct.Clear()
		return
	}

	for _, p := range c.direct.Points() {
		c.suspicion.Add(c.demote(p))
	}
	c.direct.Clear()
}

// demote copies a direct point into a suspicion point anchored at the target's last position.
func (c *Controller) demote(p *model.PathPoint) *model.PathPoint {
	d := p.Clone()
	d.Detach(c.markers)
	d.Kind = model.KindSuspicion
	d.Action = model.ActionStop
	d.SetAccuracyRadius(c.cfg.BodyRadius)
	d.TransferDelay = c.cfg.DemotedTransferDelay
	return d
}

func (c *Controller) inCandidates(anchor *model.Marker, kind model.PointKind) bool {
	for _, cand := range c.perception.Candidates() {
		if cand.Anchor == anchor && cand.Kind == kind {
			return true
		}
	}
	return false
}
