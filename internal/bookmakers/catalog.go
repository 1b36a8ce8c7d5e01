// Package bookmakers holds the sportsbooks the scanner can restrict itself to.
package bookmakers

import (
	"strings"

	"github.com/XavierBriggs/Janus/pkg/models"
)

var catalog = []models.Sportsbook{
	{Key: "betonlineag", Name: "BetOnline.ag", Region: "us"},
	{Key: "betmgm", Name: "BetMGM", Region: "us"},
	{Key: "betrivers", Name: "BetRivers", Region: "us"},
	{Key: "betus", Name: "BetUS", Region: "us"},
	{Key: "bovada", Name: "Bovada", Region: "us"},
	{Key: "draftkings", Name: "DraftKings", Region: "us"},
	{Key: "fanduel", Name: "FanDuel", Region: "us"},
	{Key: "lowvig", Name: "LowVig.ag", Region: "us"},
	{Key: "mybookieag", Name: "MyBookie.ag", Region: "us"},
	{Key: "ballybet", Name: "Bally Bet", Region: "us2"},
	{Key: "betanysports", Name: "BetAnything", Region: "us2", Notes: "Formerly BetAnySports"},
	{Key: "betparx", Name: "betPARX", Region: "us2"},
	{Key: "espnbet", Name: "theScore Bet", Region: "us2", Notes: "Formerly ESPN Bet"},
	{Key: "fliff", Name: "Fliff", Region: "us2"},
	{Key: "hardrockbet", Name: "Hard Rock Bet", Region: "us2"},
}

// All returns a copy of the sportsbook catalog
func All() []models.Sportsbook {
	books := make([]models.Sportsbook, len(catalog))
	copy(books, catalog)
	return books
}

// DefaultKeys returns the keys of the sportsbooks available without a paid plan
func DefaultKeys() []string {
	return defaultKeys(catalog)
}

func defaultKeys(books []models.Sportsbook) []string {
	keys := make([]string, 0, len(books))
	for _, book := range books {
		if book.RequiresPaid {
			continue
		}
		keys = append(keys, book.Key)
	}
	return keys
}

// Lookup finds a sportsbook by key
func Lookup(key string) (models.Sportsbook, bool) {
	for _, book := range catalog {
		if book.Key == key {
			return book, true
		}
	}
	return models.Sportsbook{}, false
}

// Unknown returns the keys that are not in the catalog, in input order.
// The vendor may still serve them.
func Unknown(keys []string) []string {
	var unknown []string
	for _, key := range keys {
		if _, ok := Lookup(key); !ok {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

// ParseKeys splits a comma-separated key list, lowercasing, trimming and
// dropping blanks and duplicates. Blank input yields nil (unrestricted).
func ParseKeys(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}

	seen := make(map[string]bool)
	keys := make([]string, 0)
	for _, part := range strings.Split(csv, ",") {
		key := strings.ToLower(strings.TrimSpace(part))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}
