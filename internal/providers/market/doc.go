/*
Package market serves prices and price histories.

Symbols with a CoinGecko mapping are fetched live through a resilience
Guard; unmapped symbols, mock mode and every upstream failure fall back to
the Generator, a mutex-guarded random walk seeded from fixed baselines.

	gen := market.NewGenerator(symbols.Baselines, nil)
	client := market.NewClient(http, guard, gen, market.Options{Coins: symbols.Coins}, logger)
	price, err := client.GetLatestPrice(ctx, "BTC-USD")

Errors are returned only for an empty symbol or an out-of-range day count.
*/
package market
