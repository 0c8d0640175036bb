package quest

// Rank tiers are a fixed monotonic step function over the point balance.
// The highest matching threshold wins. Tiers are derived, never stored.
type Rank struct {
	Threshold int64
	Name      string
}

var ranks = []Rank{
	{2000, "👑 Master"},
	{1500, "🔥 Pro"},
	{1000, "🌟 Adventurer"},
	{500, "🚀 Explorer"},
	{0, "🎈 Newbie"},
}

// RankOf returns the tier label for a point balance.
func RankOf(points int64) string {
	for _, r := range ranks {
		if points >= r.Threshold {
			return r.Name
		}
	}
	return ranks[len(ranks)-1].Name
}

// MilestonesCrossed returns every milestone m with old < m <= new, in
// the order configured. A single large credit can cross several at once;
// all of them are reported.
func MilestonesCrossed(old, new int64, milestones []int64) []int64 {
	var crossed []int64
	for _, m := range milestones {
		if old < m && m <= new {
			crossed = append(crossed, m)
		}
	}
	return crossed
}
