package models

import "fmt"

// Subject types referenced by ticker filters.
const (
	SubjectCorporation = "corporation"
	SubjectAlliance    = "alliance"
)

// TickerFilter builds the primary key for a (subjectType, subjectID) pair.
func TickerFilter(subjectType string, subjectID int64) string {
	return fmt.Sprintf("%s-%d", subjectType, subjectID)
}
