// Package common contains common constants and variables used across services
package common

const (
	// V2 fee schedules as retained-input fractions.
	FeeDenV2         = 10000
	FeeNumPancakeV2  = 9975 // 0.25%
	FeeNumUniswapV2  = 9970 // 0.30%
	FeeNumBiswapV2   = 9990 // 0.10%
	DefaultFeeNumV2  = FeeNumPancakeV2
	DefaultSlipBp    = 30
	BasisPointDenom  = 10000
	FeeDenomV3PPM    = 1_000_000
	DefaultTickSpace = 60
)

// Wire names carried in the feed envelope's event_type field. Producers
// disagree on the camel-casing of the Pancake V3 label, so both spellings
// are accepted.
const (
	WireSyncV2             = "SyncV2"
	WireSwapV3             = "SwapV3"
	WirePancakeSwapV3      = "PancakeSwapV3"
	WirePancakeSwapV3Camel = "PanCakeSwapV3"
)
