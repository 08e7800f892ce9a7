package domain

// Reward policy values. These are balancing knobs, kept in one place so
// tuning them never touches the progression state machine.
const (
	// PassThreshold is the minimum score for a submission to count as a
	// mission completion.
	PassThreshold = 70

	// MissionXPReward is the XP granted on a mission's first pass.
	MissionXPReward = 25

	// MissionCreditReward is the credit amount granted on a mission's
	// first pass.
	MissionCreditReward = 25

	// CourseCompletionCredits is the one-time bonus granted together with
	// the course certificate.
	CourseCompletionCredits = 100
)

// Rank is a named tier derived from total XP.
type Rank struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// Rank thresholds, lowest first. RankForXP walks them from the top.
var rankTiers = []struct {
	minXP int
	rank  Rank
}{
	{5000, Rank{Name: "Admiral", Level: "B2"}},
	{2500, Rank{Name: "Captain", Level: "B1"}},
	{1000, Rank{Name: "Explorer", Level: "A2"}},
	{0, Rank{Name: "Cadet", Level: "A1"}},
}

// RankForXP maps a total XP value to its rank tier.
func RankForXP(xpTotal int) Rank {
	for _, tier := range rankTiers {
		if xpTotal >= tier.minXP {
			return tier.rank
		}
	}
	return rankTiers[len(rankTiers)-1].rank
}
