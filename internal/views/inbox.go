// views/inbox.go - Derived state for the private messaging inbox
package views

import (
	"context"

	"github.com/studioleflow/portal/internal/api"
	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/querycache"
	"github.com/studioleflow/portal/internal/validation"
)

type ConversationRow struct {
	models.Conversation
	Selected bool
	LastAt   string
}

type MessageRow struct {
	models.Message
	Mine   bool
	SentAt string
}

type Thread struct {
	With     *ConversationRow
	Messages querycache.Result[[]MessageRow]
	Draft    validation.MessageForm
	Errors   validation.FieldErrors
}

type Inbox struct {
	User          models.User
	Conversations querycache.Result[[]ConversationRow]
	// Thread is nil until a conversation is selected
	Thread *Thread
}

func ConversationRows(convs []models.Conversation, selected int64) []ConversationRow {
	rows := make([]ConversationRow, 0, len(convs))
	for _, c := range convs {
		row := ConversationRow{Conversation: c, Selected: c.UserID == selected}
		if c.LastMessageAt != nil {
			row.LastAt = FormatDateTime(*c.LastMessageAt)
		}
		rows = append(rows, row)
	}
	return rows
}

func MessageRows(msgs []models.Message, me int64) []MessageRow {
	rows := make([]MessageRow, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, MessageRow{Message: m, Mine: m.SenderID == me, SentAt: FormatDateTime(m.CreatedAt)})
	}
	return rows
}

func (b *Binder) Conversations(ctx context.Context, r Request, selected int64) querycache.Result[[]ConversationRow] {
	res := querycache.LoadList(ctx, b.Cache, r.key(api.KeyConversations), b.Wait,
		func(ctx context.Context) ([]models.Conversation, error) { return b.Src.Conversations(ctx, r.Session) })
	return querycache.Map(res, func(c []models.Conversation) []ConversationRow { return ConversationRows(c, selected) })
}

func (b *Binder) Messages(ctx context.Context, r Request, with int64, me int64) querycache.Result[[]MessageRow] {
	res := querycache.LoadList(ctx, b.Cache, r.key(api.KeyConversation(with)), b.Wait,
		func(ctx context.Context) ([]models.Message, error) { return b.Src.Conversation(ctx, r.Session, with) })
	return querycache.Map(res, func(m []models.Message) []MessageRow { return MessageRows(m, me) })
}

// Inbox loads the conversation list and, when selected is non-zero, that thread
func (b *Binder) Inbox(ctx context.Context, r Request, user models.User, selected int64) Inbox {
	in := Inbox{User: user, Conversations: b.Conversations(ctx, r, selected)}
	if selected == 0 {
		return in
	}
	t := &Thread{
		Messages: b.Messages(ctx, r, selected, user.ID),
		Draft:    validation.MessageForm{ReceiverID: selected},
	}
	for i := range in.Conversations.Data {
		if in.Conversations.Data[i].UserID == selected {
			t.With = &in.Conversations.Data[i]
		}
	}
	in.Thread = t
	return in
}
