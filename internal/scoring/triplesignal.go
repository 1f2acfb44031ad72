package scoring

import (
	"github.com/sawpanic/marketintel/internal/config"
	"github.com/sawpanic/marketintel/internal/types"
)

// computeTripleSignal implements the triple-signal predicate of §4.C.
// It is monotone in its five driving scores (testable property #6):
// raising any of sizeTail/bookImbalance/thinOpposite/walletNew/
// walletActivity can only turn a false result true, never the reverse.
func computeTripleSignal(cfg config.ScoringConfig, fv types.FeatureVector) bool {
	sizeTail := 0.0
	if fv.TradeSize != nil {
		sizeTail = fv.TradeSize.SizeTailScore
	}
	walletNew := 0.0
	walletActivity := 0.0
	if fv.Wallet != nil {
		walletNew = fv.Wallet.WalletNewScore
		walletActivity = fv.Wallet.ActivityScore
	}

	return sizeTail >= cfg.TripleSignalSizeTailMin &&
		fv.OrderBook.BookImbalanceScore >= cfg.TripleSignalImbalanceMin &&
		fv.OrderBook.ThinOppositeScore >= cfg.TripleSignalThinOppositeMin &&
		(walletNew >= cfg.TripleSignalWalletNewMin || walletActivity >= cfg.TripleSignalWalletActivityMin)
}
