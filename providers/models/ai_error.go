package models

// AIError is the error payload returned by chat completion APIs.
type AIError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
