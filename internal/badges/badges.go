// Package badges derives the badges a user holds from their verified
// achievement count and total points. Badges are never stored: every call
// evaluates the ladder from scratch.
package badges

type Metric string

const (
	MetricAchievements Metric = "achievements"
	MetricPoints       Metric = "points"
)

// Rule is one rung of a ladder. A user earns the badge when the chosen
// metric reaches Threshold.
type Rule struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Icon        string `yaml:"icon" json:"icon"`
	Description string `yaml:"description" json:"description"`
	Requirement string `yaml:"requirement" json:"requirement"`
	Metric      Metric `yaml:"metric" json:"metric"`
	Threshold   int    `yaml:"threshold" json:"threshold"`
}

func (r Rule) satisfied(count, points int) bool {
	switch r.Metric {
	case MetricAchievements:
		return count >= r.Threshold
	case MetricPoints:
		return points >= r.Threshold
	default:
		return false
	}
}

// Badge is an earned rule as shown to users.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Requirement string `json:"requirement"`
}

// Ladder is an ordered rule table, easiest first.
type Ladder []Rule

var DefaultLadder = Ladder{
	{
		ID: "first_achievement", Name: "First Achievement", Icon: "🏅",
		Description: "Completed your first task", Requirement: "Complete 1 task",
		Metric: MetricAchievements, Threshold: 1,
	},
	{
		ID: "achiever", Name: "Achiever", Icon: "🌟",
		Description: "Completed 5 tasks", Requirement: "Complete 5 tasks",
		Metric: MetricAchievements, Threshold: 5,
	},
	{
		ID: "champion", Name: "Champion", Icon: "👑",
		Description: "Completed 10 tasks", Requirement: "Complete 10 tasks",
		Metric: MetricAchievements, Threshold: 10,
	},
	{
		ID: "legend", Name: "Legend", Icon: "🔥",
		Description: "Completed 20 tasks", Requirement: "Complete 20 tasks",
		Metric: MetricAchievements, Threshold: 20,
	},
	{
		ID: "point_master", Name: "Point Master", Icon: "💎",
		Description: "Earned 500 points", Requirement: "Earn 500 points",
		Metric: MetricPoints, Threshold: 500,
	},
}

// Evaluate returns every badge whose rule holds, in ladder order. Rules are
// independent, so holding a higher badge never requires a lower one.
func (l Ladder) Evaluate(count, points int) []Badge {
	out := []Badge{}
	for _, r := range l {
		if !r.satisfied(count, points) {
			continue
		}
		out = append(out, Badge{
			ID:          r.ID,
			Name:        r.Name,
			Icon:        r.Icon,
			Description: r.Description,
			Requirement: r.Requirement,
		})
	}

	return out
}

// Count is Evaluate without building the badges. It fits
// leaderboard.BadgeCounter.
func (l Ladder) Count(count, points int) int {
	n := 0
	for _, r := range l {
		if r.satisfied(count, points) {
			n++
		}
	}

	return n
}

// Evaluate runs the default ladder.
func Evaluate(count, points int) []Badge {
	return DefaultLadder.Evaluate(count, points)
}
