// Package gas implements the ideal gas container: a fixed rectangle holding
// circular particles that move in straight lines, bounce elastically off the
// walls and exchange momentum in equal-mass elastic collisions.
//
// One call to [Container.AdvanceOneFrame] resolves one tick:
//
//	c := gas.New(gas.DefaultConfig(), rand.New(rand.NewSource(1)))
//	for i := 0; i < 600; i++ {
//	    c.AdvanceOneFrame()
//	}
//	for _, p := range c.Particles() {
//	    draw(p.Position(), p.Radius(), p.Color())
//	}
//
// # Thread Safety
//
// A Container is NOT safe for concurrent use. Run independent containers
// in separate goroutines instead (see sim.Ensemble).
package gas
