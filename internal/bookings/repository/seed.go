package repository

import (
	"bytes"
	"fmt"
	"os"
	"roombook/pkg/model"
	"roombook/pkg/sanitizer"

	"gopkg.in/yaml.v3"
)

// SeedValidator is satisfied by validator.BookingValidator.
type SeedValidator interface {
	ValidateRoomSeeds(file *model.RoomSeedFile) error
}

// LoadRoomSeeds reads and validates a YAML room seed file.
func LoadRoomSeeds(path string, v SeedValidator) ([]*model.Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read room seed file %s: %w", path, err)
	}
	rooms, err := ParseRoomSeeds(data, v)
	if err != nil {
		return nil, fmt.Errorf("room seed file %s: %w", path, err)
	}
	return rooms, nil
}

// ParseRoomSeeds decodes seeds strictly; unknown keys are a typo, not data.
func ParseRoomSeeds(data []byte, v SeedValidator) ([]*model.Room, error) {
	var file model.RoomSeedFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("invalid seed yaml: %w", err)
	}

	for i := range file.Rooms {
		file.Rooms[i].ID = sanitizer.SanitizeID(file.Rooms[i].ID)
		file.Rooms[i].Name = sanitizer.SanitizeRoomName(file.Rooms[i].Name)
	}

	if err := v.ValidateRoomSeeds(&file); err != nil {
		return nil, err
	}

	rooms := make([]*model.Room, 0, len(file.Rooms))
	for _, seed := range file.Rooms {
		rooms = append(rooms, seed.Room())
	}
	return rooms, nil
}
