package ws

import (
	"context"

	"github.com/teamboard/teamboard/internal/board"
	"github.com/teamboard/teamboard/internal/card"
	"github.com/teamboard/teamboard/internal/column"
	"github.com/teamboard/teamboard/internal/project"
	"github.com/teamboard/teamboard/internal/team"
)

// In-memory repository fakes mimicking the foreign-key behavior of the real
// Postgres repositories, including the sentinel errors they map.

type fakeCardRepo struct {
	nextID  int64
	cards   map[int64]*card.Card
	columns map[int64]bool
	users   map[int64]bool
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{
		cards:   make(map[int64]*card.Card),
		columns: make(map[int64]bool),
		users:   make(map[int64]bool),
	}
}

func (f *fakeCardRepo) Create(_ context.Context, c *card.Card) error {
	if !f.columns[c.ColumnID] {
		return card.ErrUnknownColumn
	}
	if c.AssigneeID != nil && !f.users[*c.AssigneeID] {
		return card.ErrUnknownAssignee
	}
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.cards[c.ID] = &cp
	return nil
}

func (f *fakeCardRepo) GetByID(_ context.Context, id int64) (*card.Card, error) {
	c, ok := f.cards[id]
	if !ok {
		return nil, card.ErrCardNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCardRepo) List(_ context.Context) ([]card.Card, error) {
	out := make([]card.Card, 0, len(f.cards))
	for _, c := range f.cards {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCardRepo) ListByColumn(_ context.Context, columnID int64) ([]card.Card, error) {
	out := []card.Card{}
	for _, c := range f.cards {
		if c.ColumnID == columnID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCardRepo) Update(_ context.Context, id int64, fields card.UpdateFields) (*card.Card, error) {
	c, ok := f.cards[id]
	if !ok {
		return nil, card.ErrCardNotFound
	}
	if fields.ColumnID != nil {
		if !f.columns[*fields.ColumnID] {
			return nil, card.ErrUnknownColumn
		}
		c.ColumnID = *fields.ColumnID
	}
	if fields.Title != nil {
		c.Title = *fields.Title
	}
	if fields.Description != nil {
		c.Description = *fields.Description
	}
	if fields.Position != nil {
		c.Position = *fields.Position
	}
	if fields.SetAssignee {
		if fields.AssigneeID != nil && !f.users[*fields.AssigneeID] {
			return nil, card.ErrUnknownAssignee
		}
		c.AssigneeID = fields.AssigneeID
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCardRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.cards[id]; !ok {
		return card.ErrCardNotFound
	}
	delete(f.cards, id)
	return nil
}

type fakeColumnRepo struct {
	nextID int64
	cols   map[int64]*column.Column
	boards map[int64]bool
}

func newFakeColumnRepo() *fakeColumnRepo {
	return &fakeColumnRepo{
		cols:   make(map[int64]*column.Column),
		boards: make(map[int64]bool),
	}
}

func (f *fakeColumnRepo) Create(_ context.Context, c *column.Column) error {
	if !f.boards[c.BoardID] {
		return column.ErrUnknownBoard
	}
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.cols[c.ID] = &cp
	return nil
}

func (f *fakeColumnRepo) GetByID(_ context.Context, id int64) (*column.Column, error) {
	c, ok := f.cols[id]
	if !ok {
		return nil, column.ErrColumnNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeColumnRepo) List(_ context.Context) ([]column.Column, error) {
	out := make([]column.Column, 0, len(f.cols))
	for _, c := range f.cols {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeColumnRepo) ListByBoard(_ context.Context, boardID int64) ([]column.Column, error) {
	out := []column.Column{}
	for _, c := range f.cols {
		if c.BoardID == boardID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeColumnRepo) Update(_ context.Context, id int64, fields column.UpdateFields) (*column.Column, error) {
	c, ok := f.cols[id]
	if !ok {
		return nil, column.ErrColumnNotFound
	}
	if fields.Name != nil {
		c.Name = *fields.Name
	}
	if fields.Position != nil {
		c.Position = *fields.Position
	}
	cp := *c
	return &cp, nil
}

func (f *fakeColumnRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.cols[id]; !ok {
		return column.ErrColumnNotFound
	}
	delete(f.cols, id)
	return nil
}

type fakeBoardRepo struct {
	boards    map[int64]*board.Board
	ownerTeam map[int64]int64
}

func newFakeBoardRepo() *fakeBoardRepo {
	return &fakeBoardRepo{
		boards:    make(map[int64]*board.Board),
		ownerTeam: make(map[int64]int64),
	}
}

func (f *fakeBoardRepo) Create(_ context.Context, b *board.Board) error {
	cp := *b
	f.boards[b.ID] = &cp
	return nil
}

func (f *fakeBoardRepo) GetByID(_ context.Context, id int64) (*board.Board, error) {
	b, ok := f.boards[id]
	if !ok {
		return nil, board.ErrBoardNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBoardRepo) List(_ context.Context) ([]board.Board, error) {
	out := make([]board.Board, 0, len(f.boards))
	for _, b := range f.boards {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBoardRepo) Update(_ context.Context, id int64, fields board.UpdateFields) (*board.Board, error) {
	b, ok := f.boards[id]
	if !ok {
		return nil, board.ErrBoardNotFound
	}
	if fields.Name != nil {
		b.Name = *fields.Name
	}
	if fields.Description != nil {
		b.Description = *fields.Description
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBoardRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.boards[id]; !ok {
		return board.ErrBoardNotFound
	}
	delete(f.boards, id)
	return nil
}

func (f *fakeBoardRepo) OwnerTeamID(_ context.Context, boardID int64) (int64, error) {
	teamID, ok := f.ownerTeam[boardID]
	if !ok {
		return 0, board.ErrBoardNotFound
	}
	return teamID, nil
}

type fakeProjectRepo struct {
	projects map[int64]*project.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[int64]*project.Project)}
}

func (f *fakeProjectRepo) Create(_ context.Context, p *project.Project) error {
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id int64) (*project.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjectRepo) List(_ context.Context) ([]project.Project, error) {
	out := make([]project.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProjectRepo) Rename(_ context.Context, id int64, name string) (*project.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound
	}
	p.Name = name
	cp := *p
	return &cp, nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.projects[id]; !ok {
		return project.ErrProjectNotFound
	}
	delete(f.projects, id)
	return nil
}

type fakeTeamRepo struct {
	nextMembershipID int64
	teams            map[int64]*team.Team
	memberships      []team.Membership
	users            map[int64]bool
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams: make(map[int64]*team.Team),
		users: make(map[int64]bool),
	}
}

func (f *fakeTeamRepo) Create(_ context.Context, t *team.Team) error {
	cp := *t
	f.teams[t.ID] = &cp
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id int64) (*team.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, team.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTeamRepo) List(_ context.Context) ([]team.Team, error) {
	out := make([]team.Team, 0, len(f.teams))
	for _, t := range f.teams {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTeamRepo) Rename(_ context.Context, id int64, name string) (*team.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, team.ErrTeamNotFound
	}
	t.Name = name
	cp := *t
	return &cp, nil
}

func (f *fakeTeamRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.teams[id]; !ok {
		return team.ErrTeamNotFound
	}
	delete(f.teams, id)
	return nil
}

func (f *fakeTeamRepo) AddMember(_ context.Context, m *team.Membership) error {
	if !f.users[m.UserID] {
		return team.ErrUnknownUser
	}
	for _, existing := range f.memberships {
		if existing.TeamID == m.TeamID && existing.UserID == m.UserID {
			return team.ErrDuplicateMembership
		}
	}
	if m.Role == "" {
		m.Role = team.RoleMember
	}
	f.nextMembershipID++
	m.ID = f.nextMembershipID
	f.memberships = append(f.memberships, *m)
	return nil
}

func (f *fakeTeamRepo) RemoveMember(_ context.Context, membershipID int64) error {
	for i, m := range f.memberships {
		if m.ID == membershipID {
			f.memberships = append(f.memberships[:i], f.memberships[i+1:]...)
			return nil
		}
	}
	return team.ErrMembershipNotFound
}

func (f *fakeTeamRepo) ListMembers(_ context.Context, teamID int64) ([]team.Membership, error) {
	out := []team.Membership{}
	for _, m := range f.memberships {
		if m.TeamID == teamID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) ListMemberships(_ context.Context) ([]team.Membership, error) {
	out := make([]team.Membership, len(f.memberships))
	copy(out, f.memberships)
	return out, nil
}

func (f *fakeTeamRepo) ClearMembers(_ context.Context, teamID int64) error {
	kept := f.memberships[:0]
	for _, m := range f.memberships {
		if m.TeamID != teamID {
			kept = append(kept, m)
		}
	}
	f.memberships = kept
	return nil
}

func (f *fakeTeamRepo) IsMember(_ context.Context, teamID, userID int64) (bool, error) {
	for _, m := range f.memberships {
		if m.TeamID == teamID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}
