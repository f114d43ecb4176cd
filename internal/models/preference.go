package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ExpertiseDefault is the midpoint score assumed when a faculty member
// has no recorded expertise for a subject.
const ExpertiseDefault = 3

// ExpertiseScore maps a catalogue expertise tag onto the 1..5 scale the
// solvers weight with. Unknown tags are rejected rather than guessed.
func ExpertiseScore(tag string) (int, error) {
	switch tag {
	case "NOVICE":
		return 1, nil
	case "INTERMEDIATE":
		return 2, nil
	case "ADVANCED":
		return 4, nil
	case "EXPERT":
		return 5, nil
	}
	return 0, fmt.Errorf("unknown expertise level %q", tag)
}

// PreferenceScore maps a catalogue preference tag onto the -2..+2 scale.
func PreferenceScore(tag string) (int, error) {
	switch tag {
	case "STRONGLY_DISLIKE":
		return -2, nil
	case "DISLIKE":
		return -1, nil
	case "NEUTRAL":
		return 0, nil
	case "PREFER":
		return 1, nil
	case "STRONGLY_PREFER":
		return 2, nil
	}
	return 0, fmt.Errorf("unknown preference level %q", tag)
}

// WeekDay is a catalogue day tag. Indices run Monday=0 to Sunday=6.
type WeekDay string

const (
	Monday    WeekDay = "MONDAY"
	Tuesday   WeekDay = "TUESDAY"
	Wednesday WeekDay = "WEDNESDAY"
	Thursday  WeekDay = "THURSDAY"
	Friday    WeekDay = "FRIDAY"
	Saturday  WeekDay = "SATURDAY"
	Sunday    WeekDay = "SUNDAY"
)

var weekDays = []WeekDay{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// WeekDayFromIndex converts a time slot's numeric day to its tag.
func WeekDayFromIndex(idx int) (WeekDay, error) {
	if idx < 0 || idx >= len(weekDays) {
		return "", fmt.Errorf("day_of_week %d out of range", idx)
	}
	return weekDays[idx], nil
}

// ParseWeekDay validates a day tag from an availability row.
func ParseWeekDay(tag string) (WeekDay, error) {
	for _, d := range weekDays {
		if WeekDay(tag) == d {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown week day %q", tag)
}

// SlotCategory partitions the teaching day. ANY is the wildcard used by
// availability rows that cover a whole day.
type SlotCategory string

const (
	CategoryMorning   SlotCategory = "MORNING"
	CategoryAfternoon SlotCategory = "AFTERNOON"
	CategoryEvening   SlotCategory = "EVENING"
	CategoryAny       SlotCategory = "ANY"
)

// ParseSlotCategory validates a category tag from an availability row.
func ParseSlotCategory(tag string) (SlotCategory, error) {
	switch SlotCategory(tag) {
	case CategoryMorning, CategoryAfternoon, CategoryEvening, CategoryAny:
		return SlotCategory(tag), nil
	}
	return "", fmt.Errorf("unknown slot category %q", tag)
}

// SlotCategoryForTime derives the category of a slot from its start
// time. Before 12:00 is morning, before 17:00 afternoon, evening after.
func SlotCategoryForTime(start string) (SlotCategory, error) {
	hour, minute, err := parseClock(start)
	if err != nil {
		return "", err
	}
	total := hour*60 + minute
	switch {
	case total < 12*60:
		return CategoryMorning, nil
	case total < 17*60:
		return CategoryAfternoon, nil
	default:
		return CategoryEvening, nil
	}
}

// SlotDurationMinutes computes the length of a slot from its bounds.
func SlotDurationMinutes(start, end string) (int, error) {
	sh, sm, err := parseClock(start)
	if err != nil {
		return 0, err
	}
	eh, em, err := parseClock(end)
	if err != nil {
		return 0, err
	}
	return (eh*60 + em) - (sh*60 + sm), nil
}

// parseClock accepts "HH:MM" and "HH:MM:SS" wall-clock strings.
func parseClock(raw string) (int, int, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("invalid time %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid time %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q", raw)
	}
	return hour, minute, nil
}
