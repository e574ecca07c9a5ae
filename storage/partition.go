package storage

import "sort"

// DefaultPartition receives every symbol outside the tracked set, so a new or
// delisted ticker never blocks ingestion.
const DefaultPartition = "market_data_default"

// symbolPartitions is the closed routing table for the ten tracked
// instruments. It is deliberately a static constant: the tracked set is an
// auditable list, not something ingestion grows on the fly.
var symbolPartitions = map[string]string{
	"AAPL":  "market_data_aapl",
	"MSFT":  "market_data_msft",
	"GOOGL": "market_data_googl",
	"AMZN":  "market_data_amzn",
	"META":  "market_data_meta",
	"TSLA":  "market_data_tsla",
	"NVDA":  "market_data_nvda",
	"JPM":   "market_data_jpm",
	"BRK.B": "market_data_brk_b",
	"VZ":    "market_data_vz",
}

// PartitionFor maps a market symbol to its physical partition. Lookup is
// exact-match and case-sensitive; anything unrecognized lands in the default
// partition.
func PartitionFor(symbol string) string {
	if p, ok := symbolPartitions[symbol]; ok {
		return p
	}
	return DefaultPartition
}

// TrackedSymbols returns the tracked instruments in stable order.
func TrackedSymbols() []string {
	symbols := make([]string, 0, len(symbolPartitions))
	for s := range symbolPartitions {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
