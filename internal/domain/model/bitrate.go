package model

const (
	BitrateTier0 = 96000
	BitrateTier1 = 128000
	BitrateTier2 = 256000
	BitrateTier3 = 384000
)

// BitrateForTier — maximum voice bitrate for a guild boost tier.
// Unknown tiers get the tier 0 value.
func BitrateForTier(tier int) int {
	switch tier {
	case 1:
		return BitrateTier1
	case 2:
		return BitrateTier2
	case 3:
		return BitrateTier3
	default:
		return BitrateTier0
	}
}
