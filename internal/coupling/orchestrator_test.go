package coupling_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/multiphys/internal/coupling"
	"github.com/san-kum/multiphys/internal/phys"
	"github.com/san-kum/multiphys/internal/solvers"
)

// probeRing records the order of ReceiveCoupling and Step calls into a
// shared trace so the two-phase protocol can be asserted.
type probeRing struct {
	id    string
	trace *[]string
}

func (p *probeRing) ID() string { return p.id }

func (p *probeRing) Step(dt float64) (float64, error) {
	*p.trace = append(*p.trace, "step:"+p.id)
	return 0, nil
}

func (p *probeRing) Energy() phys.EnergyContributions { return phys.EnergyContributions{} }
func (p *probeRing) Entropy() phys.EntropySignature   { return phys.EntropySignature{} }

func (p *probeRing) KinematicState() map[string]float64 {
	return map[string]float64{}
}

func (p *probeRing) AbsorbEnergy(amount float64) float64 { return 0 }

func (p *probeRing) CouplingTo(targetID string) *phys.CouplingData {
	return &phys.CouplingData{SourceRing: p.id, TargetRing: targetID}
}

func (p *probeRing) ReceiveCoupling(sourceID string, data phys.CouplingData) {
	*p.trace = append(*p.trace, "recv:"+p.id+"<-"+sourceID)
}

func (p *probeRing) Reset()                        {}
func (p *probeRing) Serialize() map[string]float64 { return map[string]float64{} }

var _ phys.Ring = (*probeRing)(nil)

// failRing always errors out of Step.
type failRing struct{ probeRing }

func (f *failRing) Step(dt float64) (float64, error) {
	return 0, &phys.StepError{Ring: f.id, Wrapped: phys.ErrNumericalInstability}
}

var _ = Describe("Orchestrator", func() {
	var (
		sess *phys.Session
		orch *coupling.Orchestrator
	)

	BeforeEach(func() {
		sess = phys.NewSession()
		orch = coupling.New(sess)
	})

	Describe("registration", func() {
		It("rejects duplicate ring ids", func() {
			trace := []string{}
			Expect(orch.AddRing(&probeRing{id: "a", trace: &trace})).To(Succeed())
			err := orch.AddRing(&probeRing{id: "a", trace: &trace})
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, phys.ErrConfiguration)).To(BeTrue())
		})

		It("rejects couplings with unknown endpoints", func() {
			trace := []string{}
			Expect(orch.AddRing(&probeRing{id: "a", trace: &trace})).To(Succeed())

			err := orch.Couple("a", "ghost")
			Expect(errors.Is(err, phys.ErrConfiguration)).To(BeTrue())

			err = orch.Couple("ghost", "a")
			Expect(errors.Is(err, phys.ErrConfiguration)).To(BeTrue())
		})

		It("lists rings in registration order", func() {
			trace := []string{}
			for _, id := range []string{"c", "a", "b"} {
				Expect(orch.AddRing(&probeRing{id: id, trace: &trace})).To(Succeed())
			}
			Expect(orch.RingIDs()).To(Equal([]string{"c", "a", "b"}))
		})
	})

	Describe("global step protocol", func() {
		It("completes the full exchange phase before any ring steps", func() {
			trace := []string{}
			a := &probeRing{id: "a", trace: &trace}
			b := &probeRing{id: "b", trace: &trace}
			Expect(orch.AddRing(a)).To(Succeed())
			Expect(orch.AddRing(b)).To(Succeed())
			Expect(orch.Couple("a", "b")).To(Succeed())
			Expect(orch.Couple("b", "a")).To(Succeed())

			Expect(orch.Step(0.1)).To(Succeed())

			Expect(trace).To(Equal([]string{
				"recv:b<-a",
				"recv:a<-b",
				"step:a",
				"step:b",
			}))
		})

		It("is deterministic across repeated runs", func() {
			run := func() []string {
				trace := []string{}
				o := coupling.New(phys.NewSession())
				for _, id := range []string{"x", "y", "z"} {
					Expect(o.AddRing(&probeRing{id: id, trace: &trace})).To(Succeed())
				}
				Expect(o.Couple("x", "z")).To(Succeed())
				Expect(o.Couple("z", "y")).To(Succeed())
				Expect(o.Step(0.1)).To(Succeed())
				return trace
			}
			Expect(run()).To(Equal(run()))
		})

		It("aborts the global step on a fatal ring error", func() {
			trace := []string{}
			bad := &failRing{probeRing{id: "bad", trace: &trace}}
			after := &probeRing{id: "after", trace: &trace}
			Expect(orch.AddRing(bad)).To(Succeed())
			Expect(orch.AddRing(after)).To(Succeed())

			err := orch.Step(0.1)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, phys.ErrNumericalInstability)).To(BeTrue())
			Expect(trace).NotTo(ContainElement("step:after"))
			Expect(orch.Steps()).To(Equal(0))
			Expect(sess.Errors()).To(HaveLen(1))
		})
	})

	Describe("coupled physics", func() {
		It("conserves energy across a kinetics-thermal exchange", func() {
			kin, err := solvers.NewKinetics("reaction", sess, solvers.DefaultKineticsParams())
			Expect(err).NotTo(HaveOccurred())
			th, err := solvers.NewThermal0D("bath", sess, solvers.ThermalParams{
				Mass: 1.0, Cp: 1.0, Temperature: 300, EnvTemp: 300, Transfer: 0,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(orch.AddRing(kin)).To(Succeed())
			Expect(orch.AddRing(th)).To(Succeed())
			Expect(orch.Couple("reaction", "bath")).To(Succeed())

			initial := orch.TotalEnergy()
			for i := 0; i < 500; i++ {
				Expect(orch.Step(0.01)).To(Succeed())
			}

			// Heat released by the last step is still in flight: it is
			// delivered during the exchange phase of the next step.
			final := orch.TotalEnergy() + kin.Released()
			Expect(final).To(BeNumerically("~", initial, 1e-9))
		})

		It("raises bath temperature as the reaction proceeds", func() {
			kin, err := solvers.NewKinetics("reaction", sess, solvers.DefaultKineticsParams())
			Expect(err).NotTo(HaveOccurred())
			th, err := solvers.NewThermal0D("bath", sess, solvers.ThermalParams{
				Mass: 1.0, Cp: 1.0, Temperature: 300, EnvTemp: 300, Transfer: 0,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(orch.AddRing(kin)).To(Succeed())
			Expect(orch.AddRing(th)).To(Succeed())
			Expect(orch.Couple("reaction", "bath")).To(Succeed())

			for i := 0; i < 200; i++ {
				Expect(orch.Step(0.01)).To(Succeed())
			}
			Expect(th.Serialize()["temperature"]).To(BeNumerically(">", 300))
		})

		It("keeps total entropy non-decreasing over a coupled run", func() {
			kin, err := solvers.NewKinetics("reaction", sess, solvers.DefaultKineticsParams())
			Expect(err).NotTo(HaveOccurred())
			th, err := solvers.NewThermal0D("bath", sess, solvers.DefaultThermalParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(orch.AddRing(kin)).To(Succeed())
			Expect(orch.AddRing(th)).To(Succeed())
			Expect(orch.Couple("reaction", "bath")).To(Succeed())

			prev := orch.Snapshot().Entropy
			for i := 0; i < 300; i++ {
				Expect(orch.Step(0.01)).To(Succeed())
				cur := orch.Snapshot().Entropy
				Expect(cur).To(BeNumerically(">=", prev-1e-12))
				prev = cur
			}
		})
	})

	Describe("bookkeeping", func() {
		It("tracks time and step counts, and Reset clears them", func() {
			kin, err := solvers.NewKinetics("reaction", sess, solvers.DefaultKineticsParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(orch.AddRing(kin)).To(Succeed())

			for i := 0; i < 10; i++ {
				Expect(orch.Step(0.5)).To(Succeed())
			}
			Expect(orch.Steps()).To(Equal(10))
			Expect(orch.Time()).To(BeNumerically("~", 5.0, 1e-12))

			orch.Reset()
			Expect(orch.Steps()).To(BeZero())
			Expect(orch.Time()).To(BeZero())
			Expect(orch.TotalEnergy()).To(BeNumerically("~",
				solvers.DefaultKineticsParams().Concentration*
					solvers.DefaultKineticsParams().EnthalpyPerUnit, 1e-12))
		})

		It("flattens ring records under prefixed keys", func() {
			kin, err := solvers.NewKinetics("reaction", sess, solvers.DefaultKineticsParams())
			Expect(err).NotTo(HaveOccurred())
			Expect(orch.AddRing(kin)).To(Succeed())
			Expect(orch.Step(0.01)).To(Succeed())

			rec := orch.Serialize()
			Expect(rec).To(HaveKey("time"))
			Expect(rec).To(HaveKey("total_energy"))
			Expect(rec).To(HaveKey("reaction.concentration"))
		})
	})
})
