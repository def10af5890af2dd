package upload

import "github.com/liteseed/arloader/transaction"

// priceReward looks up the two gateway price points transaction.CalculateReward
// needs and returns the scaled reward string for dataSize.
func priceReward(gw priceGetter, dataSize int64, multiplier float64) (string, error) {
	base, err := gw.Price(transaction.ChunkSize)
	if err != nil {
		return "", err
	}
	incremental, err := gw.Price(2 * transaction.ChunkSize)
	if err != nil {
		return "", err
	}
	return transaction.CalculateReward(dataSize, base, incremental, multiplier), nil
}

// priceGetter is the slice of gateway.Client this file needs, kept narrow
// so reward pricing can be exercised in tests without the full client.
type priceGetter interface {
	Price(size int64) (int64, error)
}
