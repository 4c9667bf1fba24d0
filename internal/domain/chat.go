package domain

// ChatRole — автор реплики в истории диалога.
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatTurn — одна реплика диалога.
type ChatTurn struct {
	Role ChatRole
	Text string
}

func NewChatTurn(role ChatRole, text string) ChatTurn {
	return ChatTurn{Role: role, Text: text}
}
