package domain

// ActivityStats holds per-chat message counts for one day.
type ActivityStats struct {
	ChatID       ChatID
	Date         string // YYYY-MM-DD
	MessageCount int64
	PerUser      map[UserID]int64
}

// ProfanityStat is one aggregated flagged-word count for a chat.
type ProfanityStat struct {
	ChatID ChatID `db:"chat_id"`
	UserID UserID `db:"user_id"`
	Word   string `db:"word"`
	Count  int64  `db:"count"`
}
