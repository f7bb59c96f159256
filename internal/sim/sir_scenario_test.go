package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rk4sim/internal/analysis"
	"github.com/san-kum/rk4sim/internal/dynamo"
	"github.com/san-kum/rk4sim/internal/integrators"
	"github.com/san-kum/rk4sim/internal/metrics"
	"github.com/san-kum/rk4sim/internal/models"
	"github.com/san-kum/rk4sim/internal/sim"
)

// populationCheck records the largest deviation of S+I+R from one.
type populationCheck struct{ worst float64 }

func (p *populationCheck) OnStep(_ int, y dynamo.State, _ float64) {
	p.worst = math.Max(p.worst, math.Abs(y.Sum()-1))
}

var _ = Describe("SIR epidemic", func() {
	const (
		h     = 0.1
		steps = 800
		i0    = 1e-5
	)

	var (
		sir    models.SIR
		integ  *integrators.RK4
		runner *sim.Simulator
		check  *populationCheck
	)

	BeforeEach(func() {
		sir = models.NewSIR(models.DefaultR0, models.DefaultRemoval)

		var err error
		integ, err = integrators.NewRK4(sir.Derive, h, 0, models.SIRInitialState(i0, 0))
		Expect(err).NotTo(HaveOccurred())

		check = &populationCheck{}
		runner = sim.New(integ, nil)
		runner.SetLabels(sir.Labels())
		runner.AddObserver(check)
		runner.AddMetric(metrics.NewPeak("peak_I", 1))
		runner.AddMetric(metrics.NewPeakTime("peak_I_time", 1))
		runner.AddMetric(metrics.NewFinal("final_R", 2))
	})

	run := func() *dynamo.Result {
		cfg := dynamo.DefaultConfig()
		cfg.Steps = steps
		res, err := runner.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		return res
	}

	Context("with R0=3 over 80 days", func() {
		It("covers the full horizon on the fixed grid", func() {
			res := run()
			Expect(res.StepsTaken).To(Equal(steps))
			Expect(res.Times).To(HaveLen(steps + 1))
			Expect(res.Times[steps]).To(BeNumerically("~", 80, 1e-9))
			Expect(integ.Evaluations()).To(Equal(4 * steps))
		})

		It("conserves the population at every step", func() {
			run()
			Expect(check.worst).To(BeNumerically("<", 1e-12))
		})

		It("keeps every compartment within [0, 1]", func() {
			res := run()
			for _, y := range res.States {
				for _, v := range y {
					Expect(v).To(BeNumerically(">=", -1e-12))
					Expect(v).To(BeNumerically("<=", 1+1e-12))
				}
			}
		})

		It("produces a single infection peak near the analytic height", func() {
			res := run()
			infected := res.Component(1)

			peaks := analysis.Peaks(infected)
			Expect(peaks).To(HaveLen(1))

			// I_max = 1 - (1 + ln R0) / R0 for S0 close to one
			want := 1 - (1+math.Log(models.DefaultR0))/models.DefaultR0
			Expect(res.Metrics["peak_I"]).To(BeNumerically("~", want, 1e-3))
			Expect(res.Metrics["peak_I_time"]).To(Equal(res.Times[peaks[0]]))
		})

		It("ends near the final-size relation", func() {
			res := run()
			r := res.Metrics["final_R"]
			// R_inf = 1 - exp(-R0 * R_inf)
			Expect(r).To(BeNumerically("~", 1-math.Exp(-models.DefaultR0*r), 1e-3))
			Expect(res.Component(1)[steps]).To(BeNumerically("<", 1e-3))
		})

		It("is monotone in S and R", func() {
			res := run()
			for i := 1; i < len(res.States); i++ {
				Expect(res.States[i][0]).To(BeNumerically("<=", res.States[i-1][0]))
				Expect(res.States[i][2]).To(BeNumerically(">=", res.States[i-1][2]))
			}
		})
	})

	Context("with an intervention", func() {
		It("flattens the curve", func() {
			baseline := run()

			damped := sir
			damped.Intervention = models.Intervention{Start: 10, End: 60, Factor: 0.4}
			Expect(integ.SetFunction(damped.Derive)).To(Succeed())
			Expect(integ.SetInitialPoint(0)).To(Succeed())
			Expect(integ.SetInitialValues(models.SIRInitialState(i0, 0))).To(Succeed())

			flattened := run()
			Expect(flattened.Metrics["peak_I"]).To(BeNumerically("<", baseline.Metrics["peak_I"]))
			Expect(check.worst).To(BeNumerically("<", 1e-12))
		})
	})

	Context("when integrated backward", func() {
		It("retraces the trajectory", func() {
			res := run()
			end := res.States[steps]

			back, err := integrators.NewRK4(sir.Derive, -h, res.Times[steps], end)
			Expect(err).NotTo(HaveOccurred())
			Expect(back.Integrate(steps)).To(Succeed())

			Expect(back.CurrentPoint()).To(BeNumerically("~", 0, 1e-9))
			Expect(back.CurrentValues()[1]).To(BeNumerically("~", i0, 1e-6))
		})
	})
})
