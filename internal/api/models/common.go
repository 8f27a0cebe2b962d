// Package models provides request and response models for the TripWeaver API.
package models

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
