package linsys_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/numlab/internal/linsys"
)

func drain(it *linsys.Iterator) []linsys.VectorIterationState {
	GinkgoHelper()
	var states []linsys.VectorIterationState
	for it.HasNext() {
		st, err := it.Next()
		Expect(err).NotTo(HaveOccurred())
		states = append(states, st)
	}
	return states
}

var _ = Describe("Iterative solvers", func() {
	a := linsys.NewMatrix([][]float64{
		{10, -1, 2, 0},
		{-1, 11, -1, 3},
		{2, -1, 10, -1},
		{0, 3, -1, 8},
	})
	b := linsys.Vector{6, 25, -11, 15}
	want := linsys.Vector{1, 2, -1, 1}

	DescribeTable("converge on a diagonally dominant system",
		func(m linsys.IterativeMethod, omega float64) {
			cfg := linsys.DefaultIterConfig()
			cfg.Omega = omega
			it, err := linsys.NewIterator(m, a, b, nil, cfg)
			Expect(err).NotTo(HaveOccurred())

			states := drain(it)
			first, last := states[0], states[len(states)-1]

			Expect(first.K).To(Equal(0))
			Expect(first.X).To(Equal(linsys.Vector{0, 0, 0, 0}))
			Expect(first.Residual).To(BeNumerically("~", b.Norm(), 1e-12))

			Expect(last.Residual).To(BeNumerically("<=", cfg.Tol))
			Expect(last.Residual).To(BeNumerically("<", first.Residual))
			expectClose(last.X, want, 1e-5)

			_, err = it.Next()
			Expect(err).To(MatchError(linsys.ErrExhausted))
		},
		Entry("jacobi", linsys.Jacobi, 0.0),
		Entry("gauss-seidel", linsys.GaussSeidel, 0.0),
		Entry("sor", linsys.SOR, 1.1),
	)

	It("needs fewer Gauss-Seidel sweeps than Jacobi steps", func() {
		cfg := linsys.DefaultIterConfig()
		j, _ := linsys.NewIterator(linsys.Jacobi, a, b, nil, cfg)
		g, _ := linsys.NewIterator(linsys.GaussSeidel, a, b, nil, cfg)
		Expect(len(drain(g))).To(BeNumerically("<", len(drain(j))))
	})

	It("reproduces Gauss-Seidel with omega = 1", func() {
		cfg := linsys.DefaultIterConfig()
		cfg.Omega = 1
		gs, _ := linsys.NewIterator(linsys.GaussSeidel, a, b, nil, cfg)
		sor, _ := linsys.NewIterator(linsys.SOR, a, b, nil, cfg)
		Expect(drain(sor)).To(Equal(drain(gs)))
	})

	It("starts from the given x0 and leaves it untouched", func() {
		x0 := linsys.Vector{1, 1, 1, 1}
		it, err := linsys.NewIterator(linsys.GaussSeidel, a, b, x0, linsys.DefaultIterConfig())
		Expect(err).NotTo(HaveOccurred())
		st, _ := it.Next()
		Expect(st.X).To(Equal(x0))
		it.Next()
		Expect(x0).To(Equal(linsys.Vector{1, 1, 1, 1}))
	})

	It("stops at the step cap", func() {
		cfg := linsys.IterConfig{Tol: 1e-300, MaxIter: 3, Omega: 1.2}
		it, err := linsys.NewIterator(linsys.Jacobi, a, b, nil, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(drain(it)).To(HaveLen(4))
	})

	It("is reproducible", func() {
		cfg := linsys.DefaultIterConfig()
		x, _ := linsys.NewIterator(linsys.SOR, a, b, nil, cfg)
		y, _ := linsys.NewIterator(linsys.SOR, a, b, nil, cfg)
		Expect(drain(x)).To(Equal(drain(y)))
	})

	DescribeTable("reject out-of-range omega for SOR",
		func(omega float64) {
			cfg := linsys.DefaultIterConfig()
			cfg.Omega = omega
			_, err := linsys.NewIterator(linsys.SOR, a, b, nil, cfg)
			Expect(err).To(MatchError(linsys.ErrInvalidOmega))
		},
		Entry("zero", 0.0),
		Entry("two", 2.0),
		Entry("negative", -0.5),
		Entry("too large", 2.5),
	)

	It("ignores omega for Jacobi", func() {
		cfg := linsys.DefaultIterConfig()
		cfg.Omega = 5
		_, err := linsys.NewIterator(linsys.Jacobi, a, b, nil, cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects zero diagonals and bad configs", func() {
		z := linsys.NewMatrix([][]float64{{0, 1}, {1, 2}})
		_, err := linsys.NewIterator(linsys.Jacobi, z, linsys.Vector{1, 1}, nil, linsys.DefaultIterConfig())
		Expect(err).To(MatchError(linsys.ErrZeroDiagonal))

		_, err = linsys.NewIterator(linsys.Jacobi, a, b, nil, linsys.IterConfig{Tol: 0, MaxIter: 10})
		Expect(err).To(MatchError(linsys.ErrInvalidConfig))

		_, err = linsys.NewIterator(linsys.Jacobi, a, b, linsys.Vector{1}, linsys.DefaultIterConfig())
		Expect(err).To(MatchError(linsys.ErrDimension))
	})

	It("parses method names", func() {
		m, err := linsys.ParseIterative("Seidel")
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(linsys.GaussSeidel))

		_, err = linsys.ParseIterative("conjugate-gradient")
		Expect(err).To(MatchError(linsys.ErrUnknownMethod))

		for _, m := range linsys.IterativeMethods() {
			got, err := linsys.ParseIterative(m.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(m))
		}
	})

	It("flags diagonal dominance", func() {
		Expect(a.IsDiagonallyDominant()).To(BeTrue())
		Expect(linsys.NewMatrix([][]float64{{1, 2}, {2, 1}}).IsDiagonallyDominant()).To(BeFalse())
		Expect(linsys.NewMatrix([][]float64{{1, 2}, {3}}).IsDiagonallyDominant()).To(BeFalse())
	})
})
