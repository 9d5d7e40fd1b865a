package response

import "time"

type AnswerResponse struct {
	Answer string `json:"answer"`
}

type ChatMessageResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// History is chronological, oldest first.
type ChatHistoryResponse struct {
	History []ChatMessageResponse `json:"history"`
}
