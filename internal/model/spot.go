package model

import "time"

// ParkingSpot is one exclusively allocatable unit of the parking pool, as
// stored in the `parking_spots` table. Spots are seeded once and soft
// disabled through IsActive rather than deleted.
//
// Fields:
//  ID         – primary key identifier.
//  SpotNumber – small positive number, unique; allocation scans ascending.
//  Name       – display label (e.g. A1).
//  Location   – free-form location hint shown to drivers.
//  IsActive   – inactive spots are never allocated or counted as capacity.
//  CreatedAt  – creation timestamp.
type ParkingSpot struct {
	ID         uint64    // parking_spots.id
	SpotNumber int       // parking_spots.spot_number
	Name       string    // parking_spots.name
	Location   string    // parking_spots.location
	IsActive   bool      // parking_spots.is_active
	CreatedAt  time.Time // parking_spots.created_at
}
