package models

// Response - тело успешного ответа.
type Response struct {
	Response any `json:"response"`
	Code     int `json:"code"`
}

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// ScoreResponse - результат метода online_score.
type ScoreResponse struct {
	Score float64 `json:"score"`
}

// InterestsResponse - результат метода clients_interests: id клиента (строкой) → интересы.
type InterestsResponse map[string][]string
