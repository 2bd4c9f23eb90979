package gas

// moveX advances p along x, reflecting off the left or right wall.
func (c *Container) moveX(p *Particle) {
	b := c.cfg.Bounds
	x, vx, bounced := reflect(p.position.X, p.velocity.X, p.radius, b.TopLeft.X, b.BottomRight.X)
	p.position.X, p.velocity.X = x, vx
	if bounced {
		c.stats.WallBounces++
	}
}

// moveY advances p along y, reflecting off the top or bottom wall.
func (c *Container) moveY(p *Particle) {
	b := c.cfg.Bounds
	y, vy, bounced := reflect(p.position.Y, p.velocity.Y, p.radius, b.TopLeft.Y, b.BottomRight.Y)
	p.position.Y, p.velocity.Y = y, vy
	if bounced {
		c.stats.WallBounces++
	}
}

// reflect moves a coordinate by one step of its velocity between walls at
// lo and hi. When the particle's edge would reach a wall, the distance it
// overshoots is mirrored back into the box and the velocity flips, so the
// path length for the step is preserved.
func reflect(pos, vel, radius, lo, hi float64) (float64, float64, bool) {
	next := pos + vel
	if next-radius > lo && next+radius < hi {
		return next, vel, false
	}
	if next-radius <= lo {
		pos = lo + (lo - (next - radius)) + radius
	} else {
		pos = hi + (hi - (next + radius)) - radius
	}
	return pos, -vel, true
}
