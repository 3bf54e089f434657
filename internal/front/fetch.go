package front

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/progress"
)

const (
	taskPageSize        = 200
	achievementPageSize = 1000
)

// DownstreamError carries a non-2xx answer from the team or task service so
// handlers can relay its status.
type DownstreamError struct {
	Method string
	URL    string
	Status int
	Msg    string
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("downstream %s %s -> %d: %s", e.Method, e.URL, e.Status, e.Msg)
}

// Downstream talks to the team and task services on behalf of the signed-in
// user, forwarding their access token.
type Downstream struct {
	TeamBase string
	TaskBase string
	Client   *http.Client
}

// send performs the request and turns a non-2xx answer into a
// *DownstreamError. The caller closes the body of a successful response.
func (d *Downstream) send(ctx context.Context, method, url, bearer string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		var e struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(b, &e) != nil || e.Error == "" {
			e.Error = string(b)
		}
		return nil, &DownstreamError{Method: method, URL: url, Status: resp.StatusCode, Msg: e.Error}
	}

	return resp, nil
}

func (d *Downstream) doJSON(ctx context.Context, method, url, bearer string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = b
	}

	resp, err := d.send(ctx, method, url, bearer, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// Relay forwards body as is and hands back the raw 2xx answer.
func (d *Downstream) Relay(ctx context.Context, method, url, bearer string, body []byte) (int, []byte, error) {
	resp, err := d.send(ctx, method, url, bearer, body)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, b, nil
}

type ItemsResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// collect walks every page of a list endpoint. Pages are requested oldest
// first so rows created meanwhile only append to the tail.
func collect[T any](ctx context.Context, d *Downstream, base, bearer string, q url.Values, pageSize int) ([]T, error) {
	all := []T{}
	for offset := 0; ; {
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("offset", strconv.Itoa(offset))

		var page ItemsResponse[T]
		if err := d.doJSON(ctx, http.MethodGet, base+"?"+q.Encode(), bearer, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		limit := pageSize
		if page.Limit > 0 && page.Limit < limit {
			limit = page.Limit
		}
		if len(page.Items) == 0 || len(page.Items) < limit {
			return all, nil
		}
		offset += len(page.Items)
	}
}

func (d *Downstream) Me(ctx context.Context, bearer string) (models.User, error) {
	var u models.User
	err := d.doJSON(ctx, http.MethodGet, d.TeamBase+"/auth/me", bearer, nil, &u)
	return u, err
}

func (d *Downstream) MyTeams(ctx context.Context, bearer string) ([]models.Team, error) {
	var teams ItemsResponse[models.Team]
	err := d.doJSON(ctx, http.MethodGet, d.TeamBase+"/auth/my-teams", bearer, nil, &teams)
	return teams.Items, err
}

func (d *Downstream) Team(ctx context.Context, bearer, teamID string) (models.Team, error) {
	var t models.Team
	err := d.doJSON(ctx, http.MethodGet, d.TeamBase+"/auth/teams/"+url.PathEscape(teamID), bearer, nil, &t)
	return t, err
}

func (d *Downstream) Members(ctx context.Context, bearer, teamID string) ([]models.Member, error) {
	var members ItemsResponse[models.Member]
	u := fmt.Sprintf("%s/auth/teams/%s/members", d.TeamBase, url.PathEscape(teamID))
	err := d.doJSON(ctx, http.MethodGet, u, bearer, nil, &members)
	return members.Items, err
}

func (d *Downstream) JoinByCode(ctx context.Context, bearer, code string) (models.TeamMember, error) {
	var m models.TeamMember
	err := d.doJSON(ctx, http.MethodPost, d.TeamBase+"/auth/join", bearer, map[string]string{"code": code}, &m)
	return m, err
}

func (d *Downstream) SetRole(ctx context.Context, bearer, userID string, role models.Role) error {
	u := fmt.Sprintf("%s/admin/users/%s/role", d.TeamBase, url.PathEscape(userID))
	return d.doJSON(ctx, http.MethodPut, u, bearer, map[string]models.Role{"role": role}, nil)
}

// TeamTasks returns every task of the team. Closed tasks are included since
// achievements on them still count.
func (d *Downstream) TeamTasks(ctx context.Context, bearer, teamID string) ([]models.Task, error) {
	q := url.Values{"teamid": {teamID}, "all": {"true"}, "order": {"created_asc"}}
	return collect[models.Task](ctx, d, d.TaskBase+"/auth/tasks", bearer, q, taskPageSize)
}

// Achievements returns every achievement matching q.
func (d *Downstream) Achievements(ctx context.Context, bearer string, q url.Values) ([]models.Achievement, error) {
	q.Set("order", "completed_asc")
	return collect[models.Achievement](ctx, d, d.TaskBase+"/auth/achievements", bearer, q, achievementPageSize)
}

func (d *Downstream) SubmitProof(ctx context.Context, bearer, taskID string, proof ProofRequest) (models.Achievement, error) {
	var a models.Achievement
	u := fmt.Sprintf("%s/auth/tasks/%s/achievements", d.TaskBase, url.PathEscape(taskID))
	err := d.doJSON(ctx, http.MethodPost, u, bearer, proof, &a)
	return a, err
}

func (d *Downstream) Contribute(ctx context.Context, bearer, taskID string, req ContributeRequest) (progress.Result, error) {
	var res progress.Result
	u := fmt.Sprintf("%s/auth/tasks/%s/progress", d.TaskBase, url.PathEscape(taskID))
	err := d.doJSON(ctx, http.MethodPost, u, bearer, req, &res)
	return res, err
}

func (d *Downstream) AdminTeams(ctx context.Context, bearer string) ([]models.Team, error) {
	var teams ItemsResponse[models.Team]
	err := d.doJSON(ctx, http.MethodGet, d.TeamBase+"/admin/teams?limit=200", bearer, nil, &teams)
	return teams.Items, err
}
