package models

import "time"

type Service struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Price           float64   `json:"price"`
	ServiceLocation string    `json:"service_location"`
	AvailableCities []string  `json:"available_cities"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Review struct {
	ID        int64     `json:"id"`
	Service   string    `json:"service"`
	Rating    int       `json:"rating"` // 1..5
	Text      string    `json:"text"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}
