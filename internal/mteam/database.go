package mteam

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/pgutil"
)

var (
	ErrAlreadyMember    = errors.New("already a member of this team")
	ErrTeamFull         = errors.New("team has reached its athlete limit")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrEmailTaken       = errors.New("email already registered")
)

const teamColumns = `
	t.id, t.name, t.sport, t.description, t.logo_url, t.coach_id,
	t.subscription_tier, t.max_athletes, t.created_at, t.updated_at,
	(SELECT COUNT(*) FROM team_members m WHERE m.team_id = t.id) AS member_count`

func scanTeam(row pgx.Row) (models.Team, error) {
	var t models.Team
	err := row.Scan(
		&t.ID, &t.Name, &t.Sport, &t.Description, &t.LogoURL, &t.CoachID,
		&t.SubscriptionTier, &t.MaxAthletes, &t.CreatedAt, &t.UpdatedAt,
		&t.MemberCount,
	)

	return t, err
}

func collectTeams(rows pgx.Rows) ([]models.Team, error) {
	defer rows.Close()

	out := []models.Team{}
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

// UpsertUser records the caller from their token. Name and email follow
// the identity provider; the stored role wins once set by an admin.
func UpsertUser(ctx context.Context, u models.User) (models.User, error) {
	if u.Role == "" {
		u.Role = models.RoleAthlete
	}

	err := pool.QueryRow(ctx, `
		INSERT INTO users (id, email, name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		   SET email = EXCLUDED.email,
		       name = EXCLUDED.name,
		       updated_at = now()
		RETURNING id, email, name, role, avatar_url, created_at, updated_at
	`, u.ID, u.Email, u.Name, u.Role).Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if pgutil.IsUniqueViolation(err, "users_email_key") {
		return models.User{}, ErrEmailTaken
	}

	return u, err
}

func SetUserRole(ctx context.Context, userID string, role models.Role) error {
	ct, err := pool.Exec(ctx, `UPDATE users SET role = $1, updated_at = now() WHERE id = $2`, role, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// CreateTeam inserts the team and its coach membership together.
func CreateTeam(ctx context.Context, t models.Team) (models.Team, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return models.Team{}, err
	}
	defer tx.Rollback(ctx)

	t.ID = uuid.NewString()
	err = tx.QueryRow(ctx, `
		INSERT INTO teams (id, name, sport, description, logo_url, coach_id, subscription_tier, max_athletes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, t.ID, t.Name, t.Sport, t.Description, t.LogoURL, t.CoachID, t.SubscriptionTier, t.MaxAthletes,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Team{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (id, team_id, user_id, role)
		VALUES ($1, $2, $3, 'coach')
	`, uuid.NewString(), t.ID, t.CoachID)
	if err != nil {
		return models.Team{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Team{}, err
	}
	t.MemberCount = 1

	return t, nil
}

func GetTeam(ctx context.Context, teamID string) (models.Team, error) {
	return scanTeam(pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams t WHERE t.id = $1`, teamID))
}

func DeleteTeam(ctx context.Context, teamID string) error {
	ct, err := pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func orderClause(order string) string {
	switch order {
	case "created_asc":
		return "t.created_at ASC"
	case "name_asc":
		return "t.name ASC"
	case "name_desc":
		return "t.name DESC"
	case "created_desc":
		fallthrough
	default:
		return "t.created_at DESC"
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}

	return limit
}

// ListTeams backs the browse view. name filters with ILIKE, sport exactly.
func ListTeams(ctx context.Context, name, sport string, limit int, order string) ([]models.Team, error) {
	var (
		where []string
		args  []any
	)
	if name = strings.TrimSpace(name); name != "" {
		args = append(args, "%"+name+"%")
		where = append(where, fmt.Sprintf("t.name ILIKE $%d", len(args)))
	}
	if sport = strings.TrimSpace(sport); sport != "" {
		args = append(args, sport)
		where = append(where, fmt.Sprintf("t.sport = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, normalizeLimit(limit))

	q := fmt.Sprintf(`SELECT %s FROM teams t %s ORDER BY %s LIMIT $%d`,
		teamColumns, clause, orderClause(order), len(args))

	rows, err := pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}

	return collectTeams(rows)
}

func ListTeamsForUser(ctx context.Context, userID string, limit int) ([]models.Team, error) {
	rows, err := pool.Query(ctx, `
		SELECT `+teamColumns+`
		FROM teams t
		JOIN team_members me ON me.team_id = t.id AND me.user_id = $1
		ORDER BY me.joined_at DESC
		LIMIT $2
	`, userID, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}

	return collectTeams(rows)
}

// teamCandidates returns every team in creation order, the order code
// lookup resolves collisions by.
func teamCandidates(ctx context.Context) ([]models.Team, error) {
	rows, err := pool.Query(ctx, `SELECT `+teamColumns+` FROM teams t ORDER BY t.created_at ASC, t.id ASC`)
	if err != nil {
		return nil, err
	}

	return collectTeams(rows)
}

func UpdateTeam(ctx context.Context, teamID string, req UpdateTeamRequest) error {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Name != nil {
		add("name", strings.TrimSpace(*req.Name))
	}
	if req.Sport != nil {
		add("sport", strings.TrimSpace(*req.Sport))
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.LogoURL != nil {
		add("logo_url", *req.LogoURL)
	}
	if req.SubscriptionTier != nil {
		add("subscription_tier", *req.SubscriptionTier)
	}
	if req.MaxAthletes != nil {
		add("max_athletes", *req.MaxAthletes)
	}

	if len(sets) == 0 {
		return ErrNoFieldsToUpdate
	}

	args = append(args, teamID)
	q := fmt.Sprintf("UPDATE teams SET %s, updated_at = now() WHERE id = $%d", strings.Join(sets, ", "), len(args))

	ct, err := pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// JoinTeam adds an athlete. The team row is locked so concurrent joins
// cannot overshoot max_athletes.
func JoinTeam(ctx context.Context, teamID, userID string) (models.TeamMember, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return models.TeamMember{}, err
	}
	defer tx.Rollback(ctx)

	var limit int
	err = tx.QueryRow(ctx, `SELECT max_athletes FROM teams WHERE id = $1 FOR UPDATE`, teamID).Scan(&limit)
	if err != nil {
		return models.TeamMember{}, err
	}

	var athletes int
	var already bool
	err = tx.QueryRow(ctx, `
		SELECT
		  COUNT(*) FILTER (WHERE role = 'athlete'),
		  COALESCE(BOOL_OR(user_id = $2), FALSE)
		FROM team_members
		WHERE team_id = $1
	`, teamID, userID).Scan(&athletes, &already)
	if err != nil {
		return models.TeamMember{}, err
	}
	if already {
		return models.TeamMember{}, ErrAlreadyMember
	}
	if athletes >= limit {
		return models.TeamMember{}, ErrTeamFull
	}

	m := models.TeamMember{ID: uuid.NewString(), TeamID: teamID, UserID: userID, Role: models.RoleAthlete}
	err = tx.QueryRow(ctx, `
		INSERT INTO team_members (id, team_id, user_id, role)
		VALUES ($1, $2, $3, $4)
		RETURNING joined_at
	`, m.ID, m.TeamID, m.UserID, m.Role).Scan(&m.JoinedAt)
	if pgutil.IsUniqueViolation(err, "team_members_team_user_key") {
		return models.TeamMember{}, ErrAlreadyMember
	}
	if err != nil {
		return models.TeamMember{}, err
	}

	return m, tx.Commit(ctx)
}

func RemoveMember(ctx context.Context, teamID, userID string) error {
	ct, err := pool.Exec(ctx, `
		DELETE FROM team_members
		WHERE team_id = $1 AND user_id = $2 AND role <> 'coach'
	`, teamID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func ListMembers(ctx context.Context, teamID string) ([]models.Member, error) {
	rows, err := pool.Query(ctx, `
		SELECT u.id, u.email, u.name, u.role, u.avatar_url, u.created_at, u.updated_at,
		       m.role, m.joined_at
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY (m.role = 'coach') DESC, u.name
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Member{}
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(
			&m.ID, &m.Email, &m.Name, &m.Role, &m.AvatarURL, &m.CreatedAt, &m.UpdatedAt,
			&m.TeamRole, &m.JoinedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}
