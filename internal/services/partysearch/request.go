package partysearchsvc

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rzbill/partysearch/internal/partition"
)

// PostRequest is a full replacement of one partition's entries.
type PostRequest struct {
	Campaign  *int           `json:"campaign" validate:"required"`
	Continent *int           `json:"continent" validate:"required"`
	Region    *int           `json:"region" validate:"required"`
	Map       *int           `json:"map" validate:"required"`
	District  *int           `json:"district" validate:"required"`
	Language  *int           `json:"language"`
	Entries   []EntryRequest `json:"entries" validate:"required,dive"`
}

// EntryRequest is one submitted advertisement. HeroCount and Npcs are the two
// historical names of the same field; one of them must be present.
type EntryRequest struct {
	Sender           string `json:"sender"`
	PartyID          int    `json:"partyId"`
	PartySize        *int   `json:"partySize" validate:"required,gte=0"`
	PartyMaxSize     *int   `json:"partyMaxSize" validate:"required,gte=0"`
	HeroCount        *int   `json:"heroCount" validate:"required_without=Npcs"`
	Npcs             *int   `json:"npcs"`
	HardMode         *int   `json:"hardMode" validate:"omitempty,min=0,max=2"`
	Level            int    `json:"level"`
	Primary          int    `json:"primary"`
	Secondary        int    `json:"secondary"`
	SearchType       int    `json:"searchType" validate:"min=0,max=4"`
	Message          string `json:"message"`
	DistrictNumber   int    `json:"districtNumber"`
	DistrictLanguage int    `json:"districtLanguage"`
}

// QueryRequest addresses one partition. Values arrive as query strings.
type QueryRequest struct {
	Campaign  string `validate:"required,number"`
	Continent string `validate:"required,number"`
	Region    string `validate:"required,number"`
	Map       string `validate:"required,number"`
	District  string `validate:"required,number"`
	Language  string `validate:"omitempty,number"`
}

// DecodePostRequest parses a JSON body. Malformed input is InvalidPayload.
func DecodePostRequest(r io.Reader) (*PostRequest, error) {
	var req PostRequest
	dec := json.NewDecoder(r)
	if err := dec.Decode(&req); err != nil {
		return nil, fail(FailureInvalidPayload, "decode body: %v", err)
	}
	return &req, nil
}

// fieldFailures maps a struct field to the failure reported when it is invalid.
var fieldFailures = map[string]FailureKind{
	"Campaign":     FailureInvalidCampaign,
	"Continent":    FailureInvalidContinent,
	"Region":       FailureInvalidRegion,
	"Map":          FailureInvalidMap,
	"District":     FailureInvalidDistrict,
	"Language":     FailureInvalidDistrict,
	"Entries":      FailureInvalidEntries,
	"PartySize":    FailureInvalidPartySize,
	"PartyMaxSize": FailureInvalidPartyMaxSize,
	"HeroCount":    FailureInvalidNpcs,
	"Npcs":         FailureInvalidNpcs,
}

// validationFailure turns the first validator error into a Failure. Fields are
// checked in declaration order so the reported kind is deterministic.
func validationFailure(err error) *Failure {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return fail(FailureInvalidPayload, "%v", err)
	}
	fe := ves[0]
	kind, ok := fieldFailures[fe.StructField()]
	if !ok {
		kind = FailureInvalidEntries
	}
	return fail(kind, "%s failed %q", fe.Namespace(), fe.Tag())
}

func (r *PostRequest) key() partition.Key {
	k := partition.Key{MapID: *r.Map, District: partition.District{Number: *r.District}}
	if r.Language != nil {
		k.District.Language = partition.Language(*r.Language)
	}
	return k
}

func (r *PostRequest) entries() []partition.Entry {
	out := make([]partition.Entry, 0, len(r.Entries))
	for _, e := range r.Entries {
		heroes := e.HeroCount
		if heroes == nil {
			heroes = e.Npcs
		}
		hm := partition.HardModeUnspecified
		if e.HardMode != nil {
			hm = partition.HardMode(*e.HardMode)
		}
		out = append(out, partition.Entry{
			Sender:           e.Sender,
			PartyID:          e.PartyID,
			PartySize:        *e.PartySize,
			PartyMaxSize:     *e.PartyMaxSize,
			HeroCount:        *heroes,
			HardMode:         hm,
			Level:            e.Level,
			Primary:          e.Primary,
			Secondary:        e.Secondary,
			SearchType:       partition.SearchType(e.SearchType),
			Message:          e.Message,
			DistrictNumber:   e.DistrictNumber,
			DistrictLanguage: partition.Language(e.DistrictLanguage),
		})
	}
	return out
}

func (q *QueryRequest) normalize() {
	for _, p := range []*string{&q.Campaign, &q.Continent, &q.Region, &q.Map, &q.District, &q.Language} {
		*p = strings.TrimSpace(*p)
	}
}

// key parses the validated fields. Digits that overflow int are rejected with
// the failure of the field that carried them.
func (q *QueryRequest) key() (partition.Key, error) {
	var nums [3]int
	for i, f := range []struct {
		val  string
		kind FailureKind
	}{{q.Map, FailureInvalidMap}, {q.District, FailureInvalidDistrict}, {q.Language, FailureInvalidDistrict}} {
		if f.val == "" {
			continue
		}
		n, err := strconv.Atoi(f.val)
		if err != nil {
			return partition.Key{}, fail(f.kind, "%q is out of range", f.val)
		}
		nums[i] = n
	}
	return partition.Key{MapID: nums[0], District: partition.District{Number: nums[1], Language: partition.Language(nums[2])}}, nil
}
