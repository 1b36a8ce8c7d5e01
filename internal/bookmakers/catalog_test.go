package bookmakers

import (
	"testing"

	"github.com/XavierBriggs/Janus/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestCatalog(t *testing.T) {
	books := All()
	assert.Len(t, books, 15)
	assert.Len(t, DefaultKeys(), 15)

	book, ok := Lookup("espnbet")
	assert.True(t, ok)
	assert.Equal(t, "theScore Bet", book.Name)
	assert.Equal(t, "us2", book.Region)

	_, ok = Lookup("pinnacle")
	assert.False(t, ok)

	// Mutating the copy must not leak into the catalog
	books[0].Key = "mutated"
	assert.Equal(t, "betonlineag", All()[0].Key)
}

func TestDefaultKeys_SkipsPaid(t *testing.T) {
	books := []models.Sportsbook{
		{Key: "fanduel", Name: "FanDuel", Region: "us"},
		{Key: "pinnacle", Name: "Pinnacle", Region: "eu", RequiresPaid: true},
		{Key: "betmgm", Name: "BetMGM", Region: "us"},
	}
	assert.Equal(t, []string{"fanduel", "betmgm"}, defaultKeys(books))
	assert.Empty(t, defaultKeys(nil))
}

func TestUnknown(t *testing.T) {
	assert.Nil(t, Unknown(nil))
	assert.Nil(t, Unknown([]string{"fanduel", "draftkings"}))
	assert.Equal(t, []string{"pinnacle", "betfair"}, Unknown([]string{"pinnacle", "fanduel", "betfair"}))
}

func TestParseKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"blank means unrestricted", "  ", nil},
		{"single", "fanduel", []string{"fanduel"}},
		{"trim and lowercase", " FanDuel , betMGM", []string{"fanduel", "betmgm"}},
		{"dedupe", "fanduel,fanduel,draftkings", []string{"fanduel", "draftkings"}},
		{"only separators", ",,", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKeys(tt.input))
		})
	}
}
