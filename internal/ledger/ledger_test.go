package ledger_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/multiphys/internal/ledger"
	"github.com/san-kum/multiphys/internal/phys"
)

var _ = Describe("Snapshot", func() {
	var sc ledger.Schema

	BeforeEach(func() {
		sc = ledger.DefaultSchema()
	})

	It("includes only terms whose inputs are present", func() {
		s := phys.StateVector{"mass": 2.0, "velocity": 3.0}
		snap := sc.Take(s)

		Expect(snap.Energy).To(BeNumerically("~", 0.5*2*9, 1e-12))
		Expect(snap.Momentum).To(BeNumerically("~", 6.0, 1e-12))
		Expect(snap.Mass).To(Equal(2.0))
		Expect(snap.Entropy).To(BeZero())
	})

	It("adds potential and thermal terms when their fields exist", func() {
		s := phys.StateVector{
			"mass":          1.0,
			"position":      2.0,
			"temperature":   300.0,
			"specific_heat": 10.0,
		}
		snap := sc.Take(s)

		Expect(snap.Energy).To(BeNumerically("~", 1*9.81*2+1*10*300, 1e-9))
		Expect(snap.Entropy).To(BeNumerically("~", 10*math.Log(300), 1e-9))
	})

	It("reports zero for an empty state", func() {
		Expect(sc.Take(phys.StateVector{})).To(Equal(ledger.Snapshot{}))
	})
})

var _ = Describe("Check", func() {
	var (
		sc  ledger.Schema
		tol ledger.Tolerances
	)

	BeforeEach(func() {
		sc = ledger.DefaultSchema()
		tol = ledger.DefaultTolerances()
	})

	It("accepts identical states with exactly zero error fields", func() {
		s := phys.StateVector{
			"mass": 1.5, "velocity": 2.0, "position": 1.0, "temperature": 350.0,
		}
		r := sc.Check(s, s, tol)

		Expect(r.Valid).To(BeTrue())
		Expect(r.Violations).To(BeEmpty())
		Expect(r.Errors["energy"]).To(BeZero())
		Expect(r.Errors["momentum"]).To(BeZero())
		Expect(r.Errors["mass"]).To(BeZero())
		Expect(r.Errors["entropy"]).To(BeZero())
	})

	It("flags energy drift beyond tolerance as a violation, not an error", func() {
		a := phys.StateVector{"mass": 1.0, "velocity": 1.0}
		b := phys.StateVector{"mass": 1.0, "velocity": 1.1}
		r := sc.Check(a, b, tol)

		Expect(r.Valid).To(BeFalse())
		Expect(r.Violations).To(ContainElement(ContainSubstring("energy drift")))
		Expect(r.Violations).To(ContainElement(ContainSubstring("momentum drift")))
	})

	It("normalizes energy drift by the larger magnitude", func() {
		a := phys.StateVector{"mass": 1.0, "velocity": 1000.0}
		b := phys.StateVector{"mass": 1.0, "velocity": 1000.0000001}
		r := sc.Check(a, b, tol)

		Expect(r.Valid).To(BeTrue())
	})

	It("flags mass loss above the absolute tolerance", func() {
		a := phys.StateVector{"mass": 1.0}
		b := phys.StateVector{"mass": 1.0 - 1e-6}
		r := sc.Check(a, b, tol)

		Expect(r.Valid).To(BeFalse())
		Expect(r.Violations).To(ContainElement(ContainSubstring("mass drift")))
	})

	It("reports a second-law violation when a thermal field cools below tolerance", func() {
		a := phys.StateVector{"mass": 1.0, "temperature": 300.0, "specific_heat": 1.0}
		b := phys.StateVector{"mass": 1.0, "temperature": 299.0, "specific_heat": 1.0}
		r := sc.Check(a, b, tol)

		Expect(r.Violations).To(ContainElement(ContainSubstring("second law")))
	})

	It("skips the second-law check without a thermal field", func() {
		a := phys.StateVector{"mass": 1.0, "velocity": 1.0}
		b := phys.StateVector{"mass": 1.0, "velocity": 1.0}
		r := sc.Check(a, b, tol)

		Expect(r.Valid).To(BeTrue())
	})
})
