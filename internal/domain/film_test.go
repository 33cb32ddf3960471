package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/jonesrussell/north-cloud/films/internal/domain"
)

func TestFilmDocument_StringOrList(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantGenres []string
		wantCast   []string
	}{
		{"lists", `{"genres":["Drama","Crime"],"cast":["Al Pacino"]}`, []string{"Drama", "Crime"}, []string{"Al Pacino"}},
		{"scalars", `{"genres":"Drama","cast":"Al Pacino"}`, []string{"Drama"}, []string{"Al Pacino"}},
		{"missing and null", `{"cast":null}`, []string{}, []string{}},
		{"empty string", `{"genres":""}`, []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc domain.FilmDocument
			if err := json.Unmarshal([]byte(tt.raw), &doc); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			film := doc.ToFilm("1")
			if len(film.Genres) != len(tt.wantGenres) {
				t.Errorf("Genres = %v, want %v", film.Genres, tt.wantGenres)
			}
			if len(film.Cast) != len(tt.wantCast) {
				t.Errorf("Cast = %v, want %v", film.Cast, tt.wantCast)
			}
			if film.Genres == nil || film.Cast == nil {
				t.Error("projection lists must not be nil")
			}
		})
	}
}

func TestFilmDocument_RejectsWrongTypes(t *testing.T) {
	var doc domain.FilmDocument
	if err := json.Unmarshal([]byte(`{"genres":42}`), &doc); err == nil {
		t.Error("Unmarshal() accepted numeric genres")
	}
}

func TestFilmDocument_ToFilm(t *testing.T) {
	doc := domain.FilmDocument{
		Title:       "The Godfather",
		Runtime:     175,
		Director:    "Francis Ford Coppola",
		ReleaseDate: "1972-03-14T00:00:00",
		VoteAverage: 8.7,
		VoteCount:   19000,
	}

	film := doc.ToFilm("238")
	if film.ID != "238" {
		t.Errorf("ID = %q, want 238", film.ID)
	}
	if film.ReleaseDate != "1972-03-14" {
		t.Errorf("ReleaseDate = %q, want 1972-03-14", film.ReleaseDate)
	}
	if film.Runtime != 175 || film.VoteAverage != 8.7 {
		t.Errorf("numbers not copied: %+v", film)
	}
}
