package system_test

import (
	"fmt"
	"log"

	"github.com/fumin/sbc/scalar"
	"github.com/fumin/sbc/system"
)

func ExampleNew() {
	m, err := system.New(nil, scalar.Numbers(1, 2, 1, 3), nil)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	x := m.XFields()
	fmt.Println(m)
	fmt.Println(m.XFieldEquivalence())
	fmt.Println(x[0] == x[2])
	// Output:
	// L 4 z [0 0 0 0] x [1 2 1 3] zz [0 0 0]
	// [0 1 0 3]
	// true
}

func ExampleModel_Eval() {
	ramp := scalar.Func(func(t float64) float64 { return 2 * t })
	m, err := system.New(scalar.Numbers(0.5, 0.5), []scalar.Input{ramp, ramp}, scalar.Numbers(-1))
	if err != nil {
		log.Fatalf("%+v", err)
	}
	z, x, zz := m.Eval(1.5)
	fmt.Println(z, x, zz)
	// Output:
	// [0.5 0.5] [3 3] [-1]
}
