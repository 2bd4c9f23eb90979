package gas_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/types"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/idealgas/internal/gas"
)

const tol = 1e-9

func beVec(x, y float64) types.GomegaMatcher {
	return And(
		HaveField("X", BeNumerically("~", x, tol)),
		HaveField("Y", BeNumerically("~", y, tol)),
	)
}

func single(pos, vel r2.Vec) *gas.Container {
	p := gas.NewParticleWith(pos, vel, "orange", 10)
	return gas.NewFromParticles(gas.DefaultConfig(), []gas.Particle{p})
}

func kinetic(ps []gas.Particle) float64 {
	e := 0.0
	for _, p := range ps {
		e += 0.5 * r2.Dot(p.Velocity(), p.Velocity())
	}
	return e
}

func momentum(ps []gas.Particle) r2.Vec {
	var m r2.Vec
	for _, p := range ps {
		m = r2.Add(m, p.Velocity())
	}
	return m
}

var _ = Describe("Container", func() {
	var cfg gas.Config

	BeforeEach(func() {
		cfg = gas.DefaultConfig()
	})

	Describe("default construction", func() {
		var c *gas.Container

		BeforeEach(func() {
			c = gas.New(cfg, rand.New(rand.NewSource(7)))
		})

		It("holds the configured number of particles", func() {
			Expect(c.Len()).To(Equal(gas.DefaultNumParticles))
			Expect(c.Particles()).To(HaveLen(gas.DefaultNumParticles))
		})

		It("uses the default radius and color", func() {
			for _, p := range c.Particles() {
				Expect(p.Radius()).To(Equal(gas.DefaultRadius))
				Expect(p.Color()).To(Equal(gas.DefaultColor))
			}
		})

		It("places every particle fully inside the walls", func() {
			b := c.Bounds()
			for _, p := range c.Particles() {
				pos := p.Position()
				Expect(pos.X).To(BeNumerically(">=", b.TopLeft.X+p.Radius()))
				Expect(pos.Y).To(BeNumerically(">=", b.TopLeft.Y+p.Radius()))
				Expect(pos.X).To(BeNumerically("<=", b.BottomRight.X-p.Radius()))
				Expect(pos.Y).To(BeNumerically("<=", b.BottomRight.Y-p.Radius()))
			}
		})

		It("keeps velocities inside the configured range", func() {
			for _, p := range c.Particles() {
				v := p.Velocity()
				Expect(v.X).To(BeNumerically(">=", gas.DefaultMinVelocity))
				Expect(v.Y).To(BeNumerically(">=", gas.DefaultMinVelocity))
				Expect(v.X).To(BeNumerically("<=", gas.DefaultMaxVelocity))
				Expect(v.Y).To(BeNumerically("<=", gas.DefaultMaxVelocity))
			}
		})

		It("is reproducible from the same seed", func() {
			again := gas.New(cfg, rand.New(rand.NewSource(7)))
			Expect(again.Particles()).To(Equal(c.Particles()))
		})

		It("returns a copy of its particles", func() {
			ps := c.Particles()
			ps[0].SetPosition(r2.Vec{X: -1, Y: -1})
			Expect(c.Particles()[0].Position()).NotTo(beVec(-1, -1))
		})
	})

	Describe("construction from particles", func() {
		It("leaves in-bounds particles untouched", func() {
			p := gas.NewParticle(r2.Vec{X: 150, Y: 150}, r2.Vec{X: 1, Y: -2})
			c := gas.NewFromParticles(cfg, []gas.Particle{p})
			Expect(c.Particles()).To(Equal([]gas.Particle{p}))
		})

		DescribeTable("snaps out-of-bounds positions to a corner",
			func(x, y, wantX, wantY float64) {
				p := gas.NewParticle(r2.Vec{X: x, Y: y}, r2.Vec{})
				c := gas.NewFromParticles(cfg, []gas.Particle{p})
				Expect(c.Particles()[0].Position()).To(beVec(wantX, wantY))
			},
			Entry("left of the box", 50.0, 150.0, 100.0, 100.0),
			Entry("below and right", 700.0, 450.0, 600.0, 400.0),
			Entry("right, near the top", 650.0, 120.0, 600.0, 100.0),
			Entry("above, near the right", 580.0, 20.0, 600.0, 100.0),
			Entry("left, near the bottom", 10.0, 390.0, 100.0, 400.0),
		)

		DescribeTable("clamps each velocity component",
			func(vx, vy, wantX, wantY float64) {
				p := gas.NewParticle(r2.Vec{X: 150, Y: 150}, r2.Vec{X: vx, Y: vy})
				c := gas.NewFromParticles(cfg, []gas.Particle{p})
				Expect(c.Particles()[0].Velocity()).To(beVec(wantX, wantY))
			},
			Entry("both too fast", 5.0, -4.0, 3.0, -3.0),
			Entry("only x", -9.5, 1.0, -3.0, 1.0),
			Entry("only y", 2.0, 3.5, 2.0, 3.0),
			Entry("already in range", -3.0, 3.0, -3.0, 3.0),
		)

		It("keeps the supplied order and count", func() {
			ps := []gas.Particle{
				gas.NewParticleWith(r2.Vec{X: 200, Y: 200}, r2.Vec{}, "red", 1),
				gas.NewParticleWith(r2.Vec{X: 300, Y: 300}, r2.Vec{}, "blue", 2),
			}
			c := gas.NewFromParticles(cfg, ps)
			Expect(c.Len()).To(Equal(2))
			Expect(c.Particles()[0].Color()).To(Equal(gas.Color("red")))
			Expect(c.Particles()[1].Radius()).To(Equal(2.0))
		})
	})

	Describe("free movement", func() {
		DescribeTable("moves a lone particle by exactly its velocity",
			func(vx, vy float64) {
				c := single(r2.Vec{X: 150, Y: 150}, r2.Vec{X: vx, Y: vy})
				c.AdvanceOneFrame()
				p := c.Particles()[0]
				Expect(p.Position()).To(beVec(150+vx, 150+vy))
				Expect(p.Velocity()).To(beVec(vx, vy))
			},
			Entry("+x", 1.0, 0.0),
			Entry("-x", -1.0, 0.0),
			Entry("+y", 0.0, 1.0),
			Entry("-y", 0.0, -1.0),
			Entry("(+x, +y)", 1.0, 1.0),
			Entry("(+x, -y)", 1.0, -1.0),
			Entry("(-x, +y)", -1.0, 1.0),
			Entry("(-x, -y)", -1.0, -1.0),
		)

		It("translates purely for many frames away from the walls", func() {
			c := single(r2.Vec{X: 300, Y: 250}, r2.Vec{X: 0.5, Y: -0.25})
			for i := 1; i <= 100; i++ {
				c.AdvanceOneFrame()
				p := c.Particles()[0]
				Expect(p.Position()).To(beVec(300+0.5*float64(i), 250-0.25*float64(i)))
				Expect(p.Velocity()).To(beVec(0.5, -0.25))
			}
			Expect(c.Stats().WallBounces).To(BeZero())
			Expect(c.Frame()).To(Equal(100))
		})
	})

	Describe("wall collisions", func() {
		DescribeTable("reflect elastically",
			func(px, py, vx, vy, wantPX, wantPY, wantVX, wantVY float64) {
				c := single(r2.Vec{X: px, Y: py}, r2.Vec{X: vx, Y: vy})
				c.AdvanceOneFrame()
				p := c.Particles()[0]
				Expect(p.Position()).To(beVec(wantPX, wantPY))
				Expect(p.Velocity()).To(beVec(wantVX, wantVY))
			},
			Entry("left wall", 110.0, 150.0, -3.0, 0.0, 113.0, 150.0, 3.0, 0.0),
			Entry("right wall", 590.0, 150.0, 2.0, 0.0, 588.0, 150.0, -2.0, 0.0),
			Entry("top wall", 150.0, 110.0, 0.0, -1.0, 150.0, 111.0, 0.0, 1.0),
			Entry("bottom wall", 150.0, 390.0, 0.0, 2.5, 150.0, 387.5, 0.0, -2.5),

			Entry("left wall, angled", 110.0, 150.0, -3.0, -2.0, 113.0, 148.0, 3.0, -2.0),
			Entry("right wall, angled", 590.0, 150.0, 2.0, -1.5, 588.0, 148.5, -2.0, -1.5),
			Entry("top wall, angled", 150.0, 110.0, 2.5, -1.0, 152.5, 111.0, 2.5, 1.0),
			Entry("bottom wall, angled", 150.0, 390.0, -3.0, 2.5, 147.0, 387.5, -3.0, -2.5),

			Entry("top-left corner", 110.0, 110.0, -3.0, -2.0, 113.0, 112.0, 3.0, 2.0),
			Entry("bottom-left corner", 110.0, 390.0, -2.0, 1.5, 112.0, 388.5, 2.0, -1.5),
			Entry("top-right corner", 590.0, 110.0, 2.5, -1.0, 587.5, 111.0, -2.5, 1.0),
			Entry("bottom-right corner", 590.0, 390.0, 3.0, 2.5, 587.0, 387.5, -3.0, -2.5),
		)

		It("counts one bounce per reflected axis", func() {
			c := single(r2.Vec{X: 110, Y: 110}, r2.Vec{X: -3, Y: -2})
			c.AdvanceOneFrame()
			Expect(c.Stats().WallBounces).To(Equal(2))
		})

		It("bounces when the edge lands exactly on the wall", func() {
			c := single(r2.Vec{X: 113, Y: 150}, r2.Vec{X: -3, Y: 0})
			c.AdvanceOneFrame()
			p := c.Particles()[0]
			Expect(p.Position()).To(beVec(110, 150))
			Expect(p.Velocity()).To(beVec(3, 0))
		})
	})

	Describe("particle collisions", func() {
		var pair []gas.Particle

		BeforeEach(func() {
			pair = []gas.Particle{
				gas.NewParticleWith(r2.Vec{X: 120, Y: 120}, r2.Vec{X: 0.1, Y: 0}, "red", 1),
				gas.NewParticleWith(r2.Vec{X: 121.4, Y: 121.4}, r2.Vec{X: -0.1, Y: 0}, "red", 1),
			}
		})

		It("exchanges velocity along the line of centres", func() {
			c := gas.NewFromParticles(cfg, pair)
			c.AdvanceOneFrame()

			ps := c.Particles()
			Expect(ps[0].Velocity()).To(beVec(0, -0.1))
			Expect(ps[1].Velocity()).To(beVec(0, 0.1))
			Expect(ps[0].Position()).To(beVec(120, 119.9))
			Expect(ps[1].Position()).To(beVec(121.4, 121.5))
			Expect(c.Stats().Collisions).To(Equal(1))
		})

		It("ignores overlapping particles that are already separating", func() {
			pair[0].SetVelocity(r2.Vec{X: -0.1, Y: 0})
			pair[1].SetVelocity(r2.Vec{X: 0.1, Y: 0})
			c := gas.NewFromParticles(cfg, pair)
			c.AdvanceOneFrame()

			ps := c.Particles()
			Expect(ps[0].Velocity()).To(beVec(-0.1, 0))
			Expect(ps[1].Velocity()).To(beVec(0.1, 0))
			Expect(c.Stats().Collisions).To(BeZero())
		})

		It("ignores approaching particles that do not overlap", func() {
			pair[1].SetPosition(r2.Vec{X: 130, Y: 130})
			c := gas.NewFromParticles(cfg, pair)
			c.AdvanceOneFrame()
			Expect(c.Stats().Collisions).To(BeZero())
		})

		It("treats coincident particles as a no-op", func() {
			pair[1].SetPosition(pair[0].Position())
			c := gas.NewFromParticles(cfg, pair)
			c.AdvanceOneFrame()

			ps := c.Particles()
			Expect(ps[0].Velocity()).To(beVec(0.1, 0))
			Expect(ps[1].Velocity()).To(beVec(-0.1, 0))
			for _, p := range ps {
				Expect(math.IsNaN(p.Position().X) || math.IsNaN(p.Velocity().X)).To(BeFalse())
			}
		})

		It("conserves momentum when one particle hits two others in a frame", func() {
			three := []gas.Particle{
				gas.NewParticleWith(r2.Vec{X: 300, Y: 300}, r2.Vec{X: 1, Y: 0}, "red", 5),
				gas.NewParticleWith(r2.Vec{X: 308, Y: 303}, r2.Vec{X: -1, Y: 0}, "red", 5),
				gas.NewParticleWith(r2.Vec{X: 308, Y: 297}, r2.Vec{X: -1, Y: 0.5}, "red", 5),
			}
			c := gas.NewFromParticles(cfg, three)
			before := momentum(c.Particles())
			energy := kinetic(c.Particles())

			c.AdvanceOneFrame()

			Expect(c.Stats().Collisions).To(Equal(2))
			after := momentum(c.Particles())
			Expect(after).To(beVec(before.X, before.Y))
			Expect(kinetic(c.Particles())).To(BeNumerically("~", energy, tol))
		})

		Context("with the substep policy", func() {
			BeforeEach(func() {
				cfg.Policy = gas.PolicySubstep
			})

			It("separates the pair to at least contact distance", func() {
				c := gas.NewFromParticles(cfg, pair)
				c.AdvanceOneFrame()

				ps := c.Particles()
				gap := r2.Norm(r2.Sub(ps[0].Position(), ps[1].Position()))
				Expect(gap).To(BeNumerically(">=", 2-tol))
				Expect(c.Stats().Collisions).To(Equal(1))
			})

			It("conserves energy and momentum", func() {
				c := gas.NewFromParticles(cfg, pair)
				energy := kinetic(c.Particles())
				c.AdvanceOneFrame()

				Expect(kinetic(c.Particles())).To(BeNumerically("~", energy, tol))
				Expect(momentum(c.Particles())).To(beVec(0, 0))
			})
		})
	})

	Describe("long runs", func() {
		for _, policy := range []gas.Policy{gas.PolicyDirect, gas.PolicySubstep} {
			policy := policy

			Context(string(policy), func() {
				var c *gas.Container

				BeforeEach(func() {
					cfg.Policy = policy
					cfg.NumParticles = 40
					c = gas.New(cfg, rand.New(rand.NewSource(42)))
				})

				It("keeps every particle inside the box", func() {
					b := c.Bounds()
					for i := 0; i < 2000; i++ {
						c.AdvanceOneFrame()
						for _, p := range c.Particles() {
							Expect(b.Contains(p.Position(), 1e-6)).To(BeTrue(),
								"frame %d: %v escaped", i, p.Position())
						}
					}
				})

				It("conserves kinetic energy", func() {
					energy := kinetic(c.Particles())
					c.Advance(2000)
					Expect(kinetic(c.Particles())).To(BeNumerically("~", energy, 1e-6*energy))
					Expect(c.Stats().Collisions).To(BeNumerically(">", 0))
				})
			})
		}
	})
})
