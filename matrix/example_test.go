package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/lvcalib/matrix"
)

// ExampleSolveCholesky solves a damped normal-equation system (AᵀA)·x = Aᵀb.
func ExampleSolveCholesky() {
	a, _ := matrix.NewDenseFrom(3, 2, []float64{1, 0, 0, 1, 1, 1})
	b := []float64{1, 2, 3}

	g, _ := matrix.Gram(a)
	rhs, _ := matrix.MatTVec(a, b)
	x, err := matrix.SolveCholesky(g, rhs)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("x = [%.3f %.3f]\n", x[0], x[1])

	// Output:
	// x = [1.000 2.000]
}
