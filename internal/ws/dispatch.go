package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/teamboard/teamboard/internal/auth"
	"github.com/teamboard/teamboard/internal/board"
	"github.com/teamboard/teamboard/internal/card"
	"github.com/teamboard/teamboard/internal/column"
	"github.com/teamboard/teamboard/internal/project"
	"github.com/teamboard/teamboard/internal/team"
)

// handlerFunc processes one mutation event. The actor and board are threaded
// in explicitly; the returned payload is broadcast under the inbound type.
type handlerFunc func(ctx context.Context, actor auth.Identity, boardID int64, payload json.RawMessage) (any, error)

// Dispatcher routes inbound envelopes to mutation handlers. Each handler
// performs exactly one logical persistence operation; persistence work across
// all connections is bounded by a weighted semaphore.
type Dispatcher struct {
	cards    card.Repository
	columns  column.Repository
	boards   board.Repository
	projects project.Repository
	teams    team.Repository

	workers  *semaphore.Weighted
	handlers map[string]handlerFunc
}

// NewDispatcher creates a Dispatcher over the given repositories, allowing at
// most workers concurrent persistence operations.
func NewDispatcher(cards card.Repository, columns column.Repository, boards board.Repository, projects project.Repository, teams team.Repository, workers int64) *Dispatcher {
	if workers < 1 {
		workers = 1
	}

	d := &Dispatcher{
		cards:    cards,
		columns:  columns,
		boards:   boards,
		projects: projects,
		teams:    teams,
		workers:  semaphore.NewWeighted(workers),
	}

	d.handlers = map[string]handlerFunc{
		EventCardCreated:    d.cardCreated,
		EventCardUpdated:    d.cardUpdated,
		EventCardDeleted:    d.cardDeleted,
		EventCardMoved:      d.cardMoved,
		EventColumnCreated:  d.columnCreated,
		EventColumnUpdated:  d.columnUpdated,
		EventColumnDeleted:  d.columnDeleted,
		EventBoardUpdated:   d.boardUpdated,
		EventProjectRenamed: d.projectRenamed,
		EventTeamUpdated:    d.teamUpdated,
	}

	return d
}

// Dispatch parses one inbound text frame and runs the matching handler. On
// success it returns the envelope to broadcast to the board group. Any error
// is for the sender only.
func (d *Dispatcher) Dispatch(ctx context.Context, actor auth.Identity, boardID int64, frame []byte) (*OutEnvelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, errClient("Message must be valid JSON")
	}
	if env.Type == "" {
		return nil, errClient("Message must include a type")
	}
	if len(env.Payload) == 0 {
		return nil, errClient("Message must include a payload")
	}

	handler, ok := d.handlers[env.Type]
	if !ok {
		return nil, errClient("Unknown event type: %s", env.Type)
	}

	if err := d.workers.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer d.workers.Release(1)

	payload, err := handler(ctx, actor, boardID, env.Payload)
	if err != nil {
		return nil, err
	}

	return &OutEnvelope{Type: env.Type, Payload: payload}, nil
}

// resolveID picks the canonical id over the legacy alias.
func resolveID(id, alias int64) int64 {
	if id != 0 {
		return id
	}
	return alias
}

// --- card handlers ----------------------------------------------------------

type cardCreatedPayload struct {
	ColumnID    int64  `json:"column_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Assignee    *int64 `json:"assignee"`
	Position    int    `json:"position"`
}

func (d *Dispatcher) cardCreated(ctx context.Context, actor auth.Identity, _ int64, raw json.RawMessage) (any, error) {
	var p cardCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errClient("Invalid payload for card.created")
	}
	if p.ColumnID == 0 {
		return nil, errClient("column_id is required")
	}
	if p.Title == "" {
		return nil, errClient("title is required")
	}

	c := &card.Card{
		Title:       p.Title,
		Description: p.Description,
		ColumnID:    p.ColumnID,
		AssigneeID:  p.Assignee,
		Position:    p.Position,
	}
	if err := d.cards.Create(ctx, c); err != nil {
		return nil, mapCardError(err)
	}

	return struct {
		cardFields
		CreatedBy int64 `json:"created_by"`
	}{toCardFields(c), actor.UserID}, nil
}

type cardUpdatedPayload struct {
	ID          int64           `json:"id"`
	CardID      int64           `json:"card_id"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	ColumnID    *int64          `json:"column_id"`
	Assignee    json.RawMessage `json:"assignee"`
	Position    *int            `json:"position"`
}

func (d *Dispatcher) cardUpdated(ctx context.Context, actor auth.Identity, _ int64, raw json.RawMessage) (any, error) {
	var p cardUpdatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errClient("Invalid payload for card.updated")
	}
	id := resolveID(p.ID, p.CardID)
	if id == 0 {
		return nil, errClient("id is required")
	}

	fields := card.UpdateFields{
		Title:       p.Title,
		Description: p.Description,
		ColumnID:    p.ColumnID,
		Position:    p.Position,
	}
	if len(p.Assignee) > 0 {
		fields.SetAssignee = true
		if string(p.Assignee) != "null" {
			var assignee int64
			if err := json.Unmarshal(p.Assignee, &assignee); err != nil {
				return nil, errClient("assignee must be a user id or null")
			}
			fields.AssigneeID = &assignee
		}
	}

	c, err := d.cards.Update(ctx, id, fields)
	if err != nil {
		return nil, mapCardError(err)
	}

	return struct {
		cardFields
		UpdatedBy int64 `json:"updated_by"`
	}{toCardFields(c), actor.UserID}, nil
}

type cardRefPayload struct {
	ID     int64 `json:"id"`
	CardID int64 `json:"card_id"`
}

func (d *Dispatcher) cardDeleted(ctx context.Context, actor auth.Identity, _ int64, raw json.RawMessage) (any, error) {
	var p cardRefPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errClient("Invalid payload for card.deleted")
	}
	id := resolveID(p.ID, p.CardID)
	if id == 0 {
		return nil, errClient("id is required")
	}

	// Resolve the column before deleting so clients can drop the card from
	// the right list.
	var columnID *int64
	if c, err := d.cards.GetByID(ctx, id); err == nil {
		columnID = &c.ColumnID
	}

	if err := d.cards.Delete(ctx, id); err != nil {
		return nil, mapCardError(err)
	}

	return struct {
		ID        int64  `json:"id"`
		ColumnID  *int64 `json:"column_id"`
		DeletedBy int64  `json:"deleted_by"`
	}{id, columnID, actor.UserID}, nil
}

type cardMovedPayload struct {
	ID          int64  `json:"id"`
	CardID      int64  `json:"card_id"`
	NewColumnID *int64 `json:"new_column_id"`
	NewPosition *int   `json:"new_position"`
}

func (d *Dispatcher) cardMoved(ctx context.Context, actor auth.Identity, _ int64, raw json.RawMessage) (any, error) {
	var p cardMovedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errClient("Invalid payload for card.moved")
	}
	id := resolveID(p.ID, p.CardID)
	if id == 0 {
		return nil, errClient("id is required")
	}
	if p.NewColumnID == nil && p.NewPosition == nil {
		return nil, errClient("new_column_id or new_position is required")
	}

	// Old column/position come from storage, not from the client's view.
	prior, err := d.cards.GetByID(ctx, id)
	if err != nil {
		return nil, mapCardError(err)
	}

	c, err := d.cards.Update(ctx, id, card.UpdateFields{
		ColumnID: p.NewColumnID,
		Position: p.NewPosition,
	})
	if err != nil {
		return nil, mapCardError(err)
	}

	return struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		OldColumnID int64  `json:"old_column_id"`
		OldPosition int    `json:"old_position"`
		NewColumnID int64  `json:"new_column_id"`
		NewPosition int    `json:"new_position"`
		MovedBy     int64  `json:"moved_by"`
	}{c.ID, c.Title, prior.ColumnID, prior.Position, c.ColumnID, c.Position, actor.UserID}, nil
}

// cardFields is the canonical card representation in broadcast payloads.
type cardFields struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ColumnID    int64  `json:"column_id"`
	Assignee    *int64 `json:"assignee"`
	Position    int    `json:"position"`
}

func toCardFields(c *card.Card) cardFields {
	return cardFields{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		ColumnID:    c.ColumnID,
		Assignee:    c.AssigneeID,
		Position:    c.Position,
	}
}

func mapCardError(err error) error {
	switch {
	case errors.Is(err, card.ErrCardNotFound):
		return errClient("Card not found")
	case errors.Is(err, card.ErrUnknownColumn):
		return errClient("Column not found")
	case errors.Is(err, card.ErrUnknownAssignee):
		return errClient("Assignee not found")
	default:
		return err
	}
}

// --- column handlers --------------------------------------------------------

type columnCreatedPayload struct {
	Title    string `json:"title"`
	Position int    `json:"position"`
}

func (d *Dispatcher) columnCreated(ctx context.Context, actor auth.Identity, boardID int64, raw json.RawMessage) (any, error) {
	var p columnCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errClient("Invalid payload for column.created")
	}
	if p.Title == "" {
		return nil, errClient("title is required")
	}

	c := &column.Column{Name: p.Title, BoardID: boardID, Position: p.Position}
	if err := d.columns.Create(ctx, c); err != nil {
		if errors.Is(err, column.ErrUnknownBoard) {
			return nil, errClient("Board not found")
		}
		return nil, err
	}

	return struct {
		columnFields
		CreatedBy int64 `json:"created_by"`
	}{toColumnFields(c), actor.UserID}, nil
}

type columnUpdatedPayload struct {
	ID       int64   `json:"id"`
	ColumnID int64   `json:"column_id"`
	Title    *string `json:"title"`
	Position *int    `json:"position"`
}

func (d *Dispatcher) columnUpdated(ctx context.Context, actor auth.Identity, _ int64, raw json.RawMessage) (any, error) {
	var p columnUpdatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errClient("Invalid payload for column.updated")
	}
	id := resolveID(p.ID, p.ColumnID)
	if id == 0 {
		return nil, errClient("id is required")
	}

	c, err := d.columns.Update(ctx, id, column.UpdateFields{Name: p.Title, Position: p.Position})
	if err != nil {
		if errors.Is(err, column.ErrColumnNotFound) {
			return nil, errClient("Column not found")
		}
		return nil, err
	}

	return struct {
		columnFields
		UpdatedBy int64 `json:"updated_by"`
	}{toColumnFields(c), actor.UserID}, nil
}

type columnRefPayload struct {
	ID       int64 `json:"id"`
	ColumnID int64 `json:"column_id"`
}

func (d *Dispatcher) columnDeleted(ctx context.Context, actor auth.Identity, boardID int64, raw json.RawMessage) (any, error) {
	var p columnRefPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errClient("Invalid payload for column.deleted")
	}
	id := resolveID(p.ID, p.ColumnID)
	if id == 0 {
		return nil, errClient("id is required")
	}

	// Cards in the column go with it (FK cascade).
	if err := d.columns.Delete(ctx, id); err != nil {
		if errors.Is(err, column.ErrColumnNotFound) {
			return nil, errClient("Column not found")
		}
		return nil, err
	}

	return struct {
		ID        int64 `json:"id"`
		BoardID   int64 `json:"board_id"`
		DeletedBy int64 `json:"deleted_by"`
	}{id, boardID, actor.UserID}, nil
}

// columnFields is the canonical column representation in broadcast payloads.
type columnFields struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	BoardID  int64  `json:"board_id"`
	Position int    `json:"position"`
}

func toColumnFields(c *column.Column) columnFields {
	return columnFields{ID: c.ID, Title: c.Name, BoardID: c.BoardID, Position: c.Position}
}

// --- board / project / team handlers ----------------------------------------

type boardUpdatedPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (d *Dispatcher) boardUpdated(ctx context.Context, actor auth.Identity, boardID int64, raw json.RawMessage) (any, error) {
	var p boardUpdatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errClient("Invalid payload for board.updated")
	}
	if p.Title == nil && p.Description == nil {
		return nil, errClient("title or description is required")
	}

	b, err := d.boards.Update(ctx, boardID, board.UpdateFields{Name: p.Title, Description: p.Description})
	if err != nil {
		if errors.Is(err, board.ErrBoardNotFound) {
			return nil, errClient("Board not found")
		}
		return nil, err
	}

	return struct {
		ID          int64  `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		ProjectID   int64  `json:"project_id"`
		UpdatedBy   int64  `json:"updated_by"`
	}{b.ID, b.Name, b.Description, b.ProjectID, actor.UserID}, nil
}

type projectRenamedPayload struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
	NewName   string `json:"new_name"`
}

func (d *Dispatcher) projectRenamed(ctx context.Context, actor auth.Identity, _ int64, raw json.RawMessage) (any, error) {
	var p projectRenamedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errClient("Invalid payload for project.renamed")
	}
	id := resolveID(p.ID, p.ProjectID)
	if id == 0 {
		return nil, errClient("id is required")
	}
	name := p.Name
	if name == "" {
		name = p.NewName
	}
	if name == "" {
		return nil, errClient("name is required")
	}

	proj, err := d.projects.Rename(ctx, id, name)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			return nil, errClient("Project not found")
		}
		return nil, err
	}

	return struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		TeamID    int64  `json:"team_id"`
		RenamedBy int64  `json:"renamed_by"`
	}{proj.ID, proj.Name, proj.TeamID, actor.UserID}, nil
}

type teamUpdatedPayload struct {
	ID      int64    `json:"id"`
	TeamID  int64    `json:"team_id"`
	Name    *string  `json:"name"`
	Members *[]int64 `json:"members"`
}

// teamUpdated renames a team and/or destructively replaces its membership
// set: all memberships are cleared, then each listed user id is re-added.
// Unknown user ids are skipped with a warning; there is no rollback.
func (d *Dispatcher) teamUpdated(ctx context.Context, actor auth.Identity, _ int64, raw json.RawMessage) (any, error) {
	var p teamUpdatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errClient("Invalid payload for team.updated")
	}
	id := resolveID(p.ID, p.TeamID)
	if id == 0 {
		return nil, errClient("id is required")
	}

	t, err := d.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			return nil, errClient("Team not found")
		}
		return nil, err
	}

	if p.Name != nil {
		if *p.Name == "" {
			return nil, errClient("name must not be empty")
		}
		t, err = d.teams.Rename(ctx, id, *p.Name)
		if err != nil {
			return nil, err
		}
	}

	if p.Members != nil {
		if err := d.teams.ClearMembers(ctx, id); err != nil {
			return nil, err
		}
		for _, userID := range *p.Members {
			m := &team.Membership{TeamID: id, UserID: userID}
			if err := d.teams.AddMember(ctx, m); err != nil {
				if errors.Is(err, team.ErrUnknownUser) {
					slog.Warn("skipping unknown user in team membership update", "teamId", id, "userId", userID)
					continue
				}
				if errors.Is(err, team.ErrDuplicateMembership) {
					continue
				}
				return nil, err
			}
		}
	}

	members, err := d.teams.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	memberIDs := make([]int64, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}

	return struct {
		ID        int64   `json:"id"`
		Name      string  `json:"name"`
		Members   []int64 `json:"members"`
		UpdatedBy int64   `json:"updated_by"`
	}{t.ID, t.Name, memberIDs, actor.UserID}, nil
}
