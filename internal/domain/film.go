// Package domain holds the films data model, request parameters and error types.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const releaseDateLen = len("2006-01-02")

// Film is the client-facing projection returned by list, top-films and search.
type Film struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	Cast        []string `json:"cast"`
	Runtime     float64  `json:"runtime"`
	Description string   `json:"description"`
	Director    string   `json:"director"`
	VoteAverage float64  `json:"vote_average"`
	ReleaseDate string   `json:"release_date"`
}

// CrewMember is one entry of the nested crew field.
type CrewMember struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	Job        string `json:"job"`
}

// FilmDocument is the indexed _source of a film.
type FilmDocument struct {
	Title            string       `json:"title"`
	Runtime          float64      `json:"runtime"`
	Genres           StringList   `json:"genres"`
	Description      string       `json:"description"`
	Crew             []CrewMember `json:"crew,omitempty"`
	Director         string       `json:"director"`
	Cast             StringList   `json:"cast"`
	ReleaseDate      string       `json:"release_date,omitempty"`
	Status           string       `json:"status,omitempty"`
	OriginalLanguage string       `json:"original_language,omitempty"`
	VoteAverage      float64      `json:"vote_average"`
	VoteCount        float64      `json:"vote_count"`
}

// ToFilm projects the document under id. Datetimes are truncated to the date.
func (d FilmDocument) ToFilm(id string) Film {
	releaseDate := d.ReleaseDate
	if len(releaseDate) > releaseDateLen {
		releaseDate = releaseDate[:releaseDateLen]
	}

	return Film{
		ID:          id,
		Title:       d.Title,
		Genres:      d.Genres.OrEmpty(),
		Cast:        d.Cast.OrEmpty(),
		Runtime:     d.Runtime,
		Description: d.Description,
		Director:    d.Director,
		VoteAverage: d.VoteAverage,
		ReleaseDate: releaseDate,
	}
}

// StringList decodes from a JSON string, an array of strings or null.
// Source data stores single-valued cast and genres as plain strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	if data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("decode string list: %w", err)
		}
		if single == "" {
			*s = StringList{}
			return nil
		}
		*s = StringList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("decode string list: %w", err)
	}
	*s = many
	return nil
}

// OrEmpty returns the values, never nil, so JSON renders [] instead of null.
func (s StringList) OrEmpty() []string {
	if s == nil {
		return []string{}
	}
	return s
}
