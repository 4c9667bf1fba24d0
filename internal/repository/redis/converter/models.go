package converter

// ChatTurnRedisModel — элемент списка chat:<session_id>.
type ChatTurnRedisModel struct {
	Role string `json:"role"`
	Text string `json:"text"`
}
