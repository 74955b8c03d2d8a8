/*
Package mintcurve sells a derivative token (sALM) for the fee token (ALM).

The price of every unit grows linearly with the number of units minted so
far. The k-th unit ever minted, counting from zero, costs

    BasePrice + RewardUnit * k

so minting n units at once, when m units were already minted, costs

    n * BasePrice + RewardUnit * (n*m + n*(n-1)/2)

The payment is transferred to the treasury with an allowance the buyer
granted to the curve account. Burning the derivative token does not refund
the payment.
*/
package mintcurve
