package store

import (
	"fmt"

	"neurointake/internal/auth"
	"neurointake/pkg/domain"
)

// SeedDoctors inserts the department's doctor directory into an empty store.
// Doctors are created only at seed time; the API exposes no write path for
// them.
func SeedDoctors(s Store) error {
	existing, err := s.ListDoctors()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	doctors := []domain.Doctor{
		{
			Name:        "Dr. Sarah Chen",
			Specialty:   "Brain Tumor Surgery",
			Rating:      5,
			ReviewCount: 127,
			Location:    "San Francisco, CA",
		},
		{
			Name:        "Dr. Michael Rodriguez",
			Specialty:   "Spinal Surgery",
			Rating:      5,
			ReviewCount: 94,
			Location:    "San Francisco, CA",
		},
		{
			Name:        "Dr. Emily Johnson",
			Specialty:   "Pediatric Neurosurgery",
			Rating:      5,
			ReviewCount: 156,
			Location:    "San Francisco, CA",
		},
	}
	for _, d := range doctors {
		if _, err := s.CreateDoctor(d); err != nil {
			return err
		}
	}
	return nil
}

// SeedAdminUser creates the admin account for the dashboard if it does not
// exist yet. The password is stored as a bcrypt hash.
func SeedAdminUser(s Store, username, password string) error {
	if _, found, err := s.GetUserByUsername(username); err != nil {
		return err
	} else if found {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	_, err = s.CreateUser(username, hash)
	return err
}
