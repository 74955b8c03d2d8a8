/*
Package token implements a fungible token ledger with a deflationary fee
charged on every transfer.

When fees are enabled, each transfer is split into three parts:

  devFee  = floor(amount * DevFeeBps / 10000)   credited to the dev account
  burnFee = floor(amount * BurnFeeBps / 10000)  destroyed
  net     = amount - devFee - burnFee           credited to the recipient

Truncation always favours the recipient, so that net + devFee + burnFee is
exactly the transferred amount. A transfer from or to a fee exempt address
moves the full amount.

The same ledger implementation is used for the fee token, the base asset
that the fee token is swapped to and the derivative token minted by the mint
curve. Each instance is identified by its ticker and keeps its state in
buckets prefixed with that ticker.

Every mutating operation is atomic. It either applies all its changes and
publishes all its events, or fails and leaves the state untouched.
*/
package token
