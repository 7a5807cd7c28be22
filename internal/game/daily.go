package game

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateLayout is the calendar-day key shared by daily sessions and results.
const DateLayout = "2006-01-02"

// DateKey is t's calendar day in UTC.
func DateKey(t time.Time) string { return t.UTC().Format(DateLayout) }

// ParseDateKey accepts a day written as DateKey writes it.
func ParseDateKey(s string) (time.Time, error) { return time.Parse(DateLayout, s) }

// DailyIndex maps a day onto [0, n). The mapping is HMAC-SHA256 keyed by salt
// over the day key, read as a big-endian uint64; n <= 0 yields 0.
func DailyIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(DateKey(date)))
	return int(binary.BigEndian.Uint64(mac.Sum(nil)) % uint64(n))
}

// DailyAnswer is the answer every daily session on date plays against.
func DailyAnswer(answers []string, date time.Time, salt string) string {
	if len(answers) == 0 {
		return ""
	}
	return answers[DailyIndex(date, salt, len(answers))]
}
