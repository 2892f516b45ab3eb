// Package format holds the date layouts and Russian pluralization shared by
// the storage text fields and the user-facing texts.
package format

import (
	"fmt"
	"time"
)

// DBDateLayout is the legacy "YYYY-MM-DD HH:MM:SS" layout the subscription
// window fields are stored in.
const DBDateLayout = "2006-01-02 15:04:05"

const userDateLayout = "02.01.2006"

func ParseDBDate(raw string) (time.Time, error) {
	return time.Parse(DBDateLayout, raw)
}

func FormatDBDate(t time.Time) string {
	return t.Format(DBDateLayout)
}

// UserDate renders a stored date as DD.MM.YYYY; unparsable input is returned
// as is rather than hidden.
func UserDate(raw string) string {
	t, err := ParseDBDate(raw)
	if err != nil {
		return raw
	}
	return t.Format(userDateLayout)
}

// DaysWord picks the Russian declension of "день" for a count.
func DaysWord(days int) string {
	if days < 0 {
		days = -days
	}
	switch {
	case days%10 == 1 && days%100 != 11:
		return "день"
	case days%10 >= 2 && days%10 <= 4 && (days%100 < 10 || days%100 >= 20):
		return "дня"
	default:
		return "дней"
	}
}

// UserCount renders "N пользователей" with the right declension.
func UserCount(count int) string {
	var word string
	switch {
	case count%10 == 1 && count%100 != 11:
		word = "пользователь"
	case count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20):
		word = "пользователя"
	default:
		word = "пользователей"
	}
	return fmt.Sprintf("%d %s", count, word)
}
