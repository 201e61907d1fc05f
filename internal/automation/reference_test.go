package automation_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/photonrlc/internal/automation"
	"github.com/san-kum/photonrlc/internal/experiment"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var _ = Describe("Reference scenario", func() {
	var params experiment.Params

	BeforeEach(func() {
		params = experiment.DefaultParams()
		params.Seed = 2024
	})

	Context("with one trial", func() {
		It("terminates with a finite, non-negative energy delta", func() {
			params.Trials = 1

			rep, err := automation.RunTrials(context.Background(), params)
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Trials).To(HaveLen(1))

			res := rep.Trials[0]
			Expect(finite(res.Delta)).To(BeTrue())
			Expect(res.Delta).To(BeNumerically(">=", 0))

			Expect(res.Perturbed.Start()).To(Equal(0.0))
			Expect(res.Perturbed.End()).To(BeNumerically("<", 5e-10))
			Expect(res.Perturbed.End()).To(BeNumerically("~", 4.9e-10, 1e-15))
			Expect(res.Perturbed.Monotonic()).To(BeTrue())
			Expect(res.Baseline.End()).To(Equal(5e-10))
		})
	})

	Context("with ten trials", func() {
		It("produces finite summary statistics", func() {
			params.Trials = 10

			rep, err := automation.RunTrials(context.Background(), params, automation.WithWorkers(4))
			Expect(err).NotTo(HaveOccurred())

			s := rep.Summary
			Expect(s.Count).To(Equal(10))
			Expect(finite(s.Mean)).To(BeTrue())
			Expect(finite(s.Median)).To(BeTrue())
			Expect(finite(s.StdDev)).To(BeTrue())
			Expect(s.StdDev).To(BeNumerically(">=", 0))
			Expect(s.Min).To(BeNumerically("<=", s.Median))
			Expect(s.Median).To(BeNumerically("<=", s.Max))

			distinct := map[float64]bool{}
			for _, d := range rep.Deltas {
				Expect(d).To(BeNumerically(">=", 0))
				distinct[d] = true
			}
			if len(distinct) > 1 {
				Expect(s.StdDev).To(BeNumerically(">", 0))
			}
		})
	})
})
