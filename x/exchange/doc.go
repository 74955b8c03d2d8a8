/*
Package exchange implements a minimal constant product market between the fee
token and the base asset.

It serves as the exchange router used by the fee redistribution. The pair
account holds both reserves. A swap pulls the input with an allowance granted
to the pair account and measures what was actually received, so tokens that
charge a fee on transfer are priced correctly. The price follows the
x * y = k invariant with a configurable swap fee.

A swap never executes partially. It is rejected when executed after its
deadline or when the output would be lower than the accepted minimum.
*/
package exchange
