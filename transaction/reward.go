package transaction

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ChunkSize matches merkle.ChunkSize; duplicated here (rather than
// importing merkle just for the constant) since the reward formula is
// purely an arithmetic concern over a data size, not a tree.
const ChunkSize = 256 * 1024

// CalculateReward computes reward = base + incremental*(ceil(dataSize/CHUNK_SIZE)-1),
// scaled by multiplier, per §4.C4. base and incremental are winston prices
// for payloads of size CHUNK_SIZE and 2*CHUNK_SIZE respectively, as
// returned by the gateway's price endpoint. The result is truncated to a
// whole winston count, matching the network's integer reward field.
func CalculateReward(dataSize int64, base, incremental int64, multiplier float64) string {
	chunks := int64(math.Ceil(float64(dataSize) / float64(ChunkSize)))
	if chunks < 1 {
		chunks = 1
	}

	baseline := decimal.NewFromInt(base)
	step := decimal.NewFromInt(incremental).Mul(decimal.NewFromInt(chunks - 1))
	total := baseline.Add(step).Mul(decimal.NewFromFloat(multiplier))

	return fmt.Sprint(total.Truncate(0).IntPart())
}
