/*
Package redistribution implements the fee redistributor.

The redistribution pool is an account that collects fee tokens. Releasing
the pool splits its whole balance between a fixed list of recipients
according to their shares, expressed in basis points that sum up to 10000.
A recipient is paid either directly in the fee token, or in the base asset
bought by selling its part on an exchange router.

Every payout is executed in isolation. A failed payout is rolled back,
counted in a persistent errors counter and published as an ErrorHandled
event. It does not prevent the remaining recipients from being paid, and
the part owed to the failed recipient stays in the pool for the next
release. Rounding leftovers stay in the pool as well.

Release can be called by anyone. The Scheduler calls it periodically.
*/
package redistribution
