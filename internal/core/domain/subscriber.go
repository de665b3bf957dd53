package domain

// ChatID identifies a notification recipient (a Telegram chat).
type ChatID int64
