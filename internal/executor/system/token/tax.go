package token

import (
	"math/big"
)

// splitTax cuts an amount into the collected tax and the net remainder.
// Integer division truncates toward zero, the net takes the whole remainder
// so tax+net always reconstructs the amount exactly.
func splitTax(amount *big.Int, rateBps uint64) (tax, net *big.Int) {
	tax = new(big.Int).Mul(amount, new(big.Int).SetUint64(rateBps))
	tax.Div(tax, big.NewInt(TaxRateDenominator))
	net = new(big.Int).Sub(amount, tax)
	return tax, net
}
