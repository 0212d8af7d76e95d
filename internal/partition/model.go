package partition

import (
	"fmt"
	"strconv"
)

// Language identifies the language of a district.
type Language int

const (
	LanguageEnglish  Language = 0
	LanguageKorean   Language = 1
	LanguageFrench   Language = 2
	LanguageGerman   Language = 3
	LanguageItalian  Language = 4
	LanguageSpanish  Language = 5
	LanguageChinese  Language = 6
	LanguageJapanese Language = 8
	LanguagePolish   Language = 9
	LanguageRussian  Language = 10
)

// District is one instance of a map, identified by number and language.
type District struct {
	Number   int
	Language Language
}

// Key identifies one partition: the place where searches are grouped.
type Key struct {
	MapID    int
	District District
}

// String returns the storage identity of the partition. Unlike the combined
// key it includes the district language.
func (k Key) String() string {
	return strconv.Itoa(k.MapID) + "-" + strconv.Itoa(k.District.Number) + "-" + strconv.Itoa(int(k.District.Language))
}

// Combined returns the wire/index key "{mapId}-{district}".
func (k Key) Combined() string {
	return CombinedKey(k.MapID, k.District.Number)
}

// CombinedKey joins a map id and a district number with a hyphen.
func CombinedKey(mapID, district int) string {
	return strconv.Itoa(mapID) + "-" + strconv.Itoa(district)
}

// HardMode is a tri-state flag.
type HardMode int

const (
	HardModeDisabled HardMode = iota
	HardModeEnabled
	HardModeUnspecified
)

func (h HardMode) String() string {
	switch h {
	case HardModeDisabled:
		return "disabled"
	case HardModeEnabled:
		return "enabled"
	case HardModeUnspecified:
		return "unspecified"
	default:
		return fmt.Sprintf("HardMode(%d)", int(h))
	}
}

// SearchType is the activity a party is looking for.
type SearchType int

const (
	SearchHunting SearchType = iota
	SearchMission
	SearchQuest
	SearchTrade
	SearchGuild
)

var searchTypeNames = [...]string{"Hunting", "Mission", "Quest", "Trade", "Guild"}

func (s SearchType) String() string {
	if s >= 0 && int(s) < len(searchTypeNames) {
		return searchTypeNames[s]
	}
	return fmt.Sprintf("SearchType(%d)", int(s))
}

// Entry is one advertisement. Sender is the row identity inside a partition;
// the empty string is a valid identity.
//
// Entry is a comparable value: two entries are equal iff every field is equal.
type Entry struct {
	Sender           string
	PartyID          int
	PartySize        int
	PartyMaxSize     int
	HeroCount        int
	HardMode         HardMode
	Level            int
	Primary          int
	Secondary        int
	SearchType       SearchType
	Message          string
	DistrictNumber   int
	DistrictLanguage Language
}

// Aggregate is the full entry set of one partition.
type Aggregate struct {
	Key     Key
	Entries []Entry
}

// Row is a single stored entry together with its partition.
type Row struct {
	Key   Key
	Entry Entry
}
