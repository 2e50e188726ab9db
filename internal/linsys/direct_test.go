package linsys_test

import (
	"fmt"
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/numlab/internal/linsys"
)

var _ = Describe("Direct solvers", func() {
	var registry *linsys.Registry

	BeforeEach(func() {
		registry = linsys.NewRegistry()
	})

	spd := linsys.NewMatrix([][]float64{
		{4, 1, 2},
		{1, 5, 1},
		{2, 1, 6},
	})
	spdB := linsys.Vector{7, 7, 9}

	DescribeTable("solve a symmetric positive definite system",
		func(name string) {
			solver, err := registry.GetDirect(name)
			Expect(err).NotTo(HaveOccurred())

			sol, err := solver.Solve(spd, spdB)
			Expect(err).NotTo(HaveOccurred())
			expectClose(sol.Solution, linsys.Vector{1, 1, 1}, 1e-12)

			ref, err := linsys.Reference(spd, spdB)
			Expect(err).NotTo(HaveOccurred())
			expectClose(sol.Solution, ref, 1e-10)

			Expect(sol.History[0].Kind).To(Equal(linsys.StepInitial))
			Expect(sol.Final().Kind).To(Equal(linsys.StepComplete))
			Expect(countKind(sol, linsys.StepSubstitute)).To(Equal(3))
			Expect(countKind(sol, linsys.StepDivide)).To(Equal(3))
		},
		Entry("gauss", "gauss"),
		Entry("partial pivot", "partial-pivot"),
		Entry("full pivot", "full-pivot"),
		Entry("normalized", "normalized"),
		Entry("square root", "sqrt"),
	)

	It("does not modify its inputs", func() {
		a := spd.Clone()
		b := spdB.Clone()
		_, err := linsys.NewFullPivot().Solve(a, b)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(spd))
		Expect(b).To(Equal(spdB))
	})

	Describe("partial pivoting", func() {
		It("solves the 2x2 example and clears the sub-diagonal", func() {
			a := linsys.NewMatrix([][]float64{{2, 1}, {1, 3}})
			sol, err := linsys.NewPartialPivot().Solve(a, linsys.Vector{3, 4})
			Expect(err).NotTo(HaveOccurred())
			expectClose(sol.Solution, linsys.Vector{1, 1}, 1e-12)

			for _, st := range sol.History {
				if st.Kind == linsys.StepEliminate {
					Expect(math.Abs(st.Matrix[1][0])).To(BeNumerically("<", 1e-12))
				}
			}
			Expect(countKind(sol, linsys.StepEliminate)).To(Equal(1))
		})

		It("swaps rows where plain elimination meets a zero pivot", func() {
			a := linsys.NewMatrix([][]float64{{0, 1}, {1, 0}})
			b := linsys.Vector{1, 2}

			naive, err := linsys.NewGauss().Solve(a, b)
			Expect(err).To(MatchError(linsys.ErrSingular))
			Expect(naive.Solution).To(BeNil())
			Expect(naive.Faulted()).To(BeTrue())

			sol, err := linsys.NewPartialPivot().Solve(a, b)
			Expect(err).NotTo(HaveOccurred())
			expectClose(sol.Solution, linsys.Vector{2, 1}, 1e-12)
			Expect(sol.History[1].Kind).To(Equal(linsys.StepRowSwap))
			Expect(sol.History[1].Highlighted).To(Equal([]int{0, 1}))
		})
	})

	Describe("full pivoting", func() {
		It("un-permutes the solution after column swaps", func() {
			a := linsys.NewMatrix([][]float64{
				{1, 2, 3},
				{4, 5, 6},
				{7, 8, 10},
			})
			b := linsys.Vector{14, 32, 53}

			sol, err := linsys.NewFullPivot().Solve(a, b)
			Expect(err).NotTo(HaveOccurred())
			Expect(countKind(sol, linsys.StepColumnSwap)).To(BeNumerically(">", 0))
			Expect(sol.ColumnOrder).NotTo(Equal([]int{0, 1, 2}))
			expectClose(sol.Solution, linsys.Vector{1, 2, 3}, 1e-10)

			ref, err := linsys.Reference(a, b)
			Expect(err).NotTo(HaveOccurred())
			expectClose(sol.Solution, ref, 1e-10)
		})
	})

	Describe("normalized elimination", func() {
		It("leaves a unit pivot after each normalization", func() {
			a := linsys.NewMatrix([][]float64{{2, 1}, {4, 3}})
			sol, err := linsys.NewNormalized().Solve(a, linsys.Vector{3, 7})
			Expect(err).NotTo(HaveOccurred())
			expectClose(sol.Solution, linsys.Vector{1, 1}, 1e-12)

			Expect(countKind(sol, linsys.StepNormalize)).To(Equal(2))
			for _, st := range sol.History {
				if st.Kind == linsys.StepNormalize {
					row := st.Highlighted[0]
					Expect(st.Matrix[row][row]).To(Equal(1.0))
				}
			}
		})
	})

	Describe("square root method", func() {
		It("rejects a non-symmetric matrix", func() {
			a := linsys.NewMatrix([][]float64{{4, 1}, {2, 3}})
			sol, err := linsys.NewSquareRoot().Solve(a, linsys.Vector{1, 1})
			Expect(err).To(MatchError(linsys.ErrNotSymmetric))
			Expect(sol).To(BeNil())
		})

		It("faults on a symmetric indefinite matrix", func() {
			a := linsys.NewMatrix([][]float64{{1, 2}, {2, 1}})
			sol, err := linsys.NewSquareRoot().Solve(a, linsys.Vector{1, 1})
			Expect(err).To(MatchError(linsys.ErrNotPositiveDefinite))
			Expect(sol.Solution).To(BeNil())
			Expect(sol.Faulted()).To(BeTrue())
		})

		It("records every factor entry", func() {
			sol, err := linsys.NewSquareRoot().Solve(spd, spdB)
			Expect(err).NotTo(HaveOccurred())
			// one state per diagonal entry, per off-diagonal entry and per y
			Expect(countKind(sol, linsys.StepFactor)).To(Equal(3 + 6))
			Expect(sol.History[1].Description).To(Equal("u11 = 2"))
			Expect(sol.History[1].Matrix[0][1]).To(Equal(1.0))
			Expect(sol.History[2].Matrix[0][1]).To(Equal(0.5))
		})

		It("produces an upper-triangular factor", func() {
			sol, err := linsys.NewSquareRoot().Solve(spd, spdB)
			Expect(err).NotTo(HaveOccurred())
			var last linsys.MatrixState
			for _, st := range sol.History {
				if st.Kind == linsys.StepFactor {
					last = st
				}
			}
			Expect(last.Matrix[0][0]).To(BeNumerically("~", 2, 1e-12))
			for i := 1; i < 3; i++ {
				for j := 0; j < i; j++ {
					Expect(last.Matrix[i][j]).To(Equal(0.0))
				}
			}
		})
	})

	Describe("singular systems", func() {
		a := linsys.NewMatrix([][]float64{{1, 2}, {2, 4}})
		b := linsys.Vector{3, 6}

		DescribeTable("end in a fault without a solution",
			func(name string) {
				solver, _ := registry.GetDirect(name)
				sol, err := solver.Solve(a, b)
				Expect(err).To(MatchError(linsys.ErrSingular))
				Expect(sol.Solution).To(BeNil())
				Expect(sol.Final().Kind).To(Equal(linsys.StepFault))
			},
			Entry("gauss", "gauss"),
			Entry("partial pivot", "partial-pivot"),
			Entry("full pivot", "full-pivot"),
			Entry("normalized", "normalized"),
		)

		It("is rejected by the reference solver", func() {
			_, err := linsys.Reference(a, b)
			Expect(err).To(MatchError(linsys.ErrSingular))
		})
	})

	Describe("input validation", func() {
		It("rejects bad shapes and values", func() {
			solver := linsys.NewGauss()

			_, err := solver.Solve(linsys.NewMatrix([][]float64{{1, 2}}), linsys.Vector{1})
			Expect(err).To(MatchError(linsys.ErrDimension))

			_, err = solver.Solve(linsys.NewMatrix([][]float64{{1}}), linsys.Vector{1, 2})
			Expect(err).To(MatchError(linsys.ErrDimension))

			_, err = solver.Solve(nil, nil)
			Expect(err).To(MatchError(linsys.ErrDimension))

			_, err = solver.Solve(linsys.NewMatrix([][]float64{{math.NaN()}}), linsys.Vector{1})
			Expect(err).To(MatchError(linsys.ErrNotFinite))
		})

		It("reports unknown solvers", func() {
			_, err := registry.GetDirect("qr")
			Expect(err).To(MatchError(linsys.ErrUnknownMethod))
			Expect(registry.ListDirect()).To(HaveLen(5))
		})
	})

	Describe("accuracy", func() {
		DescribeTable("matches the reference solution and clears the lower triangle",
			func(name string, sys testSystem) {
				solver, err := registry.GetDirect(name)
				Expect(err).NotTo(HaveOccurred())

				sol, err := solver.Solve(sys.a, sys.b)
				Expect(err).NotTo(HaveOccurred())
				ref, err := linsys.Reference(sys.a, sys.b)
				Expect(err).NotTo(HaveOccurred())
				expectClose(sol.Solution, ref, sys.tol)
				if sys.want != nil {
					expectClose(sol.Solution, sys.want, sys.tol)
				}

				upper := beforeSubstitution(sol)
				for i := range upper.Matrix {
					for j := 0; j < i; j++ {
						Expect(upper.Matrix[i][j]).To(Equal(0.0), "entry (%d, %d)", i, j)
					}
				}
			},
			accuracyEntries(),
		)

		It("eliminates rows with a tiny multiplier", func() {
			a := linsys.NewMatrix([][]float64{{1e11, 1}, {1, 1}})
			sol, err := linsys.NewGauss().Solve(a, linsys.Vector{1e11 + 1, 2})
			Expect(err).NotTo(HaveOccurred())
			expectClose(sol.Solution, linsys.Vector{1, 1}, 1e-9)
			Expect(countKind(sol, linsys.StepEliminate)).To(Equal(1))
			Expect(beforeSubstitution(sol).Matrix[1][0]).To(Equal(0.0))
		})
	})
})

type testSystem struct {
	name string
	a    linsys.Matrix
	b    linsys.Vector
	want linsys.Vector
	tol  float64
}

// symmetricDominant returns a random symmetric, strictly diagonally
// dominant matrix with a positive diagonal, which is positive definite.
func symmetricDominant(rng *rand.Rand, n int) linsys.Matrix {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		rows[i][i] = float64(n) + rng.Float64()
		for j := i + 1; j < n; j++ {
			v := 2*rng.Float64() - 1
			rows[i][j], rows[j][i] = v, v
		}
	}
	return linsys.NewMatrix(rows)
}

func accuracyEntries() []TableEntry {
	rng := rand.New(rand.NewPCG(3, 11))
	systems := []testSystem{
		{
			name: "badly scaled 2x2",
			a:    linsys.NewMatrix([][]float64{{1e11, 1}, {1, 1}}),
			b:    linsys.Vector{1e11 + 1, 2},
			want: linsys.Vector{1, 1},
			tol:  1e-9,
		},
		{
			name: "badly scaled 3x3",
			a:    linsys.NewMatrix([][]float64{{1e11, 1, 1}, {1, 3, 1}, {1, 1, 3}}),
			b:    linsys.Vector{1e11 + 2, 5, 5},
			want: linsys.Vector{1, 1, 1},
			tol:  1e-9,
		},
		{
			name: "nearly singular",
			a:    linsys.NewMatrix([][]float64{{1, 1}, {1, 1 + 1e-8}}),
			b:    linsys.Vector{2, 2 + 1e-8},
			want: linsys.Vector{1, 1},
			tol:  1e-6,
		},
	}
	for _, n := range []int{4, 6} {
		a := symmetricDominant(rng, n)
		b := make(linsys.Vector, n)
		for i := range b {
			b[i] = 10*rng.Float64() - 5
		}
		systems = append(systems, testSystem{name: fmt.Sprintf("random %dx%d", n, n), a: a, b: b, tol: 1e-9})
	}

	var entries []TableEntry
	for _, name := range []string{"gauss", "partial-pivot", "full-pivot", "normalized", "sqrt"} {
		for _, sys := range systems {
			entries = append(entries, Entry(name+" "+sys.name, name, sys))
		}
	}
	return entries
}

// beforeSubstitution returns the last state ahead of back substitution.
func beforeSubstitution(sol *linsys.DirectSolution) linsys.MatrixState {
	var last linsys.MatrixState
	for _, st := range sol.History {
		if st.Kind == linsys.StepSubstitute {
			break
		}
		last = st
	}
	return last
}
