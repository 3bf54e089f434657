// Package models holds the records shared by the team and task services and
// the gateway.
package models

import "time"

type Role string

const (
	RoleAthlete Role = "athlete"
	RoleCoach   Role = "coach"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleAthlete || r == RoleCoach || r == RoleAdmin
}

type SubscriptionTier string

const (
	TierFree       SubscriptionTier = "free"
	TierBasic      SubscriptionTier = "basic"
	TierPremium    SubscriptionTier = "premium"
	TierEnterprise SubscriptionTier = "enterprise"
)

// MaxAthletes is the default member cap of a tier.
func (t SubscriptionTier) MaxAthletes() int {
	switch t {
	case TierBasic:
		return 25
	case TierPremium:
		return 100
	case TierEnterprise:
		return 1000
	default:
		return 10
	}
}

func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierFree, TierBasic, TierPremium, TierEnterprise:
		return true
	}
	return false
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Team struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Sport            string           `json:"sport"`
	Description      string           `json:"description,omitempty"`
	LogoURL          string           `json:"logo_url,omitempty"`
	CoachID          string           `json:"coach_id"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier"`
	MaxAthletes      int              `json:"max_athletes"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`

	// derived, filled by list queries
	Code        string `json:"code,omitempty"`
	MemberCount int    `json:"memberCount"`
}

type TeamMember struct {
	ID       string    `json:"id"`
	TeamID   string    `json:"team_id"`
	UserID   string    `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// Member is a roster row: the membership joined with its user.
type Member struct {
	User
	TeamRole Role      `json:"team_role"`
	JoinedAt time.Time `json:"joined_at"`
}

type Task struct {
	ID          string     `json:"id"`
	TeamID      string     `json:"team_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Points      int        `json:"points"`
	AssignedBy  string     `json:"assigned_by"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	IsActive    bool       `json:"is_active"`

	// set only for progress tasks
	TargetValue  *float64 `json:"target_value,omitempty"`
	ProgressUnit string   `json:"progress_unit,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsProgress reports whether the task is completed through cumulative
// progress entries rather than a single proof.
func (t Task) IsProgress() bool {
	return t.TargetValue != nil
}

type AchievementSource string

const (
	SourceProof    AchievementSource = "proof"
	SourceProgress AchievementSource = "progress"
)

type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusVerified VerificationStatus = "verified"
	StatusRejected VerificationStatus = "rejected"
)

type Achievement struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	TaskID       string             `json:"task_id"`
	CompletedAt  time.Time          `json:"completed_at"`
	Verified     bool               `json:"verified"`
	Status       VerificationStatus `json:"status"`
	ProofURL     string             `json:"proof_url,omitempty"`
	ProofText    string             `json:"proof_text,omitempty"`
	VerifiedBy   string             `json:"verified_by,omitempty"`
	VerifiedAt   *time.Time         `json:"verified_at,omitempty"`
	PointsEarned int                `json:"points_earned"`
	Source       AchievementSource  `json:"source"`
}

type ProgressEntry struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	UserID     string    `json:"user_id"`
	ValueAdded float64   `json:"value_added"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// VerificationPolicy decides the verification state of a new achievement.
// Leaderboards only count verified achievements, so a review workflow can
// replace AutoVerify by leaving achievements pending.
type VerificationPolicy interface {
	Apply(a *Achievement, now time.Time)
}

// AutoVerify marks every achievement verified at write time.
type AutoVerify struct{}

const SystemVerifier = "system"

func (AutoVerify) Apply(a *Achievement, now time.Time) {
	a.Verified = true
	a.Status = StatusVerified
	a.VerifiedBy = SystemVerifier
	a.VerifiedAt = &now
}

// ReviewRequired leaves achievements pending for a coach to review.
type ReviewRequired struct{}

func (ReviewRequired) Apply(a *Achievement, _ time.Time) {
	a.Verified = false
	a.Status = StatusPending
	a.VerifiedBy = ""
	a.VerifiedAt = nil
}
