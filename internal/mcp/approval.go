package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Events sent to the frontend while an action waits for the user.
const (
	EventApprovalRequired  = "mcp:approval-required"
	EventApprovalDismissed = "mcp:approval-dismissed"
)

const defaultApprovalTimeout = 2 * time.Minute

var (
	ErrRejected        = errors.New("rejected by user")
	ErrApprovalTimeout = errors.New("approval timed out")
)

// EventEmitter allows the approval queue to notify the frontend.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Targets names what a pending action would touch, so the canvas can
// highlight it while the dialog is open.
type Targets struct {
	ElementIDs  []string `json:"elementIds,omitempty"`
	TemplateIDs []string `json:"templateIds,omitempty"`
	PresetID    string   `json:"presetId,omitempty"`
}

// PendingAction is a destructive edit waiting for the user.
type PendingAction struct {
	ID          string    `json:"id"`
	Tool        string    `json:"tool"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	Targets     Targets   `json:"targets"`
}

type pending struct {
	action PendingAction
	answer chan bool
}

// ApprovalQueue holds destructive MCP edits until the user answers in the
// desktop app. Unanswered requests are dismissed after the timeout.
type ApprovalQueue struct {
	ctx     context.Context // app lifetime, used for frontend events
	emitter EventEmitter
	timeout time.Duration

	mu      sync.Mutex
	waiting map[string]*pending
}

func NewApprovalQueue(ctx context.Context, emitter EventEmitter) *ApprovalQueue {
	return &ApprovalQueue{
		ctx:     ctx,
		emitter: emitter,
		timeout: defaultApprovalTimeout,
		waiting: make(map[string]*pending),
	}
}

// Request blocks until the user approves or rejects, the timeout passes, or
// ctx (the tool call) or the app context ends. A nil error means approved.
func (q *ApprovalQueue) Request(ctx context.Context, tool, description string, targets Targets) error {
	p := &pending{
		action: PendingAction{
			ID:          uuid.New().String(),
			Tool:        tool,
			Description: description,
			CreatedAt:   time.Now().UTC(),
			Targets:     targets,
		},
		answer: make(chan bool, 1),
	}
	id := p.action.ID

	q.mu.Lock()
	q.waiting[id] = p
	q.mu.Unlock()
	defer q.forget(id)

	q.emitter.Emit(q.ctx, EventApprovalRequired, p.action)

	timer := time.NewTimer(q.timeout)
	defer timer.Stop()

	var err error
	select {
	case ok := <-p.answer:
		if ok {
			return nil
		}
		return fmt.Errorf("%s: %w", tool, ErrRejected)
	case <-timer.C:
		err = fmt.Errorf("%s after %s: %w", tool, q.timeout, ErrApprovalTimeout)
	case <-ctx.Done():
		err = fmt.Errorf("%s: %w", tool, ctx.Err())
	case <-q.ctx.Done():
		err = fmt.Errorf("%s: app closing: %w", tool, q.ctx.Err())
	}
	q.emitter.Emit(q.ctx, EventApprovalDismissed, map[string]string{"id": id})
	return err
}

// Pending lists unanswered actions, oldest first. The frontend calls it
// after a reload to redraw open dialogs.
func (q *ApprovalQueue) Pending() []PendingAction {
	q.mu.Lock()
	out := make([]PendingAction, 0, len(q.waiting))
	for _, p := range q.waiting {
		out = append(out, p.action)
	}
	q.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (q *ApprovalQueue) Approve(actionID string) { q.answer(actionID, true) }

func (q *ApprovalQueue) Reject(actionID string) { q.answer(actionID, false) }

func (q *ApprovalQueue) answer(actionID string, ok bool) {
	q.mu.Lock()
	p := q.waiting[actionID]
	q.mu.Unlock()
	if p == nil {
		return
	}
	// first answer wins
	select {
	case p.answer <- ok:
	default:
	}
}

func (q *ApprovalQueue) forget(id string) {
	q.mu.Lock()
	delete(q.waiting, id)
	q.mu.Unlock()
}
