package integrators

import (
	"testing"

	"github.com/san-kum/rk4sim/internal/dynamo"
)

func BenchmarkRK4(b *testing.B) {
	integ, err := NewRK4(oscillator, 0.01, 0, dynamo.State{1.0, 0.0})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := integ.IntegrateStep(); err != nil {
			b.Fatal(err)
		}
	}
}

func benchNBody(x float64, y dynamo.State) dynamo.State {
	dx := make(dynamo.State, 20)
	for i := 0; i < 5; i++ {
		dx[i*4] = y[i*4+2]
		dx[i*4+1] = y[i*4+3]
		dx[i*4+2] = -y[i*4] * 0.1
		dx[i*4+3] = -y[i*4+1] * 0.1
	}
	return dx
}

func BenchmarkRK4_NBody5(b *testing.B) {
	y0 := make(dynamo.State, 20)
	for i := range y0 {
		y0[i] = float64(i) * 0.1
	}
	integ, err := NewRK4(benchNBody, 0.001, 0, y0)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := integ.IntegrateStep(); err != nil {
			b.Fatal(err)
		}
	}
}
