package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

// notificationClock stamps generated notifications.
var notificationClock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the clock behind notification timestamps and hour
// buckets. nil restores the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	notificationClock = c
}

// AlertNotification is a generated alert as published to the notification sink.
type AlertNotification struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	Region      string    `json:"region"`
	Location    string    `json:"location"`
	Conditions  []string  `json:"conditions"`
	Message     string    `json:"message"`
	GeneratedAt time.Time `json:"generated_at"`
	TimeBucket  string    `json:"time_bucket"`
}

// NewAlertNotification stamps an alert with the current time and a
// deterministic ID.
func NewAlertNotification(provider, region, location string, conditions []string, message string) AlertNotification {
	now := notificationClock.Now().UTC()
	bucket := now.Truncate(time.Hour).Format(time.RFC3339)
	return AlertNotification{
		ID:          generateID(provider, region, location, conditions, bucket),
		Provider:    provider,
		Region:      strings.ToUpper(region),
		Location:    location,
		Conditions:  append([]string(nil), conditions...),
		Message:     message,
		GeneratedAt: now,
		TimeBucket:  bucket,
	}
}

// NewIssuedAlertNotification stamps a provider-issued alert. The ID is
// derived from the provider's alert ID when it has one, so the same alert
// keeps its ID across lookups and hours. An alert without an event name
// carries no condition label.
func NewIssuedAlertNotification(provider, region string, a ActiveAlert, message string) AlertNotification {
	var conditions []string
	if event := strings.TrimSpace(textValue(a.Event)); event != "" {
		conditions = []string{event}
	}

	n := NewAlertNotification(provider, region, textValue(a.Area), conditions, message)
	if a.ID != "" {
		n.ID = issuedID(provider, a.ID)
	}
	return n
}

func issuedID(provider, alertID string) string {
	hash := sha256.Sum256([]byte(provider + "|" + alertID))
	return provider + "-" + hex.EncodeToString(hash[:8])
}

// generateID hashes the alert's identifying fields within its hour bucket, so
// repeated lookups of the same conditions in the same hour share an ID and
// consumers can drop duplicates.
func generateID(provider, region, location string, conditions []string, bucket string) string {
	input := fmt.Sprintf("%s|%s|%s|%s|%s",
		provider, strings.ToUpper(region), location, strings.Join(conditions, ","), bucket)
	hash := sha256.Sum256([]byte(input))
	return provider + "-" + hex.EncodeToString(hash[:8])
}
