package service

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrLocationNotFound = errors.New("location not found")
	ErrLocation         = errors.New("location lookup failed")
	ErrWeather          = errors.New("weather lookup failed")
	ErrCatalog          = errors.New("catalog fetch failed")
)

// Stage names a collaborator step of a recommendation.
type Stage string

// Recommendation stages in call order.
const (
	StageLocation Stage = "location"
	StageWeather  Stage = "weather"
	StageCatalog  Stage = "catalog"
)

var stageSentinels = map[Stage]error{
	StageLocation: ErrLocation,
	StageWeather:  ErrWeather,
	StageCatalog:  ErrCatalog,
}

var stageMessages = map[Stage]string{
	StageLocation: "Failed to fetch location data.",
	StageWeather:  "Failed to fetch weather data.",
	StageCatalog:  "Failed to fetch track catalog.",
}

// GenericFailureMessage is returned for failures outside any stage.
const GenericFailureMessage = "Internal server error."

// StageError reports which collaborator step failed. The cause is for logs;
// clients only ever see Public().
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap exposes the cause.
func (e *StageError) Unwrap() error { return e.Err }

// Is matches the stage sentinel (ErrLocation, ErrWeather, ErrCatalog).
func (e *StageError) Is(target error) bool {
	return stageSentinels[e.Stage] == target
}

// Public is the client-facing message for the stage.
func (e *StageError) Public() string {
	if msg, ok := stageMessages[e.Stage]; ok {
		return msg
	}
	return GenericFailureMessage
}
