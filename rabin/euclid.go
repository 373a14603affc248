package rabin

import "math/big"

// ExtendedEuclid returns gcd(a, b) together with Bézout coefficients x, y
// such that gcd = x*a + y*b. The returned gcd is never negative.
//
// The loop form keeps the stack flat for operands of any size. For a = b = 0
// the result is (0, 1, 0).
func ExtendedEuclid(a, b *big.Int) (gcd, x, y *big.Int) {
	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)

	quo := new(big.Int)
	tmp := new(big.Int)
	for r.Sign() != 0 {
		quo.Quo(oldR, r)

		tmp.Mul(quo, r)
		oldR, r = r, new(big.Int).Sub(oldR, tmp)

		tmp.Mul(quo, s)
		oldS, s = s, new(big.Int).Sub(oldS, tmp)

		tmp.Mul(quo, t)
		oldT, t = t, new(big.Int).Sub(oldT, tmp)
	}

	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldS.Neg(oldS)
		oldT.Neg(oldT)
	}
	return oldR, oldS, oldT
}
