package elasticsearch

// Field names of the films index.
const (
	FieldTitle            = "title"
	FieldTitleKeyword     = "title.keyword"
	FieldRuntime          = "runtime"
	FieldGenres           = "genres"
	FieldDescription      = "description"
	FieldCrew             = "crew"
	FieldCrewDepartment   = "crew.department"
	FieldCrewJob          = "crew.job"
	FieldDirector         = "director"
	FieldDirectorKeyword  = "director.keyword"
	FieldCast             = "cast"
	FieldReleaseDate      = "release_date"
	FieldStatus           = "status"
	FieldOriginalLanguage = "original_language"
	FieldVoteAverage      = "vote_average"
	FieldVoteCount        = "vote_count"
	FieldID               = "_id"
)

// FilmFields is the _source projection for Film results.
var FilmFields = []string{
	FieldTitle,
	FieldGenres,
	FieldCast,
	FieldRuntime,
	FieldDescription,
	FieldDirector,
	FieldVoteAverage,
	FieldReleaseDate,
}

func textWithKeyword() map[string]any {
	return map[string]any{
		"type": "text",
		"fields": map[string]any{
			"keyword": map[string]any{"type": "keyword", "ignore_above": 256},
		},
	}
}

func keyword() map[string]any {
	return map[string]any{"type": "keyword"}
}

// FilmsMapping returns the index settings and mappings for the films index.
// crew is nested so department and job stay paired per entry.
func FilmsMapping() map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				FieldTitle:       textWithKeyword(),
				FieldRuntime:     map[string]any{"type": "short"},
				FieldGenres:      keyword(),
				FieldDescription: map[string]any{"type": "text"},
				FieldCrew: map[string]any{
					"type": "nested",
					"properties": map[string]any{
						"name":       textWithKeyword(),
						"department": keyword(),
						"job":        keyword(),
					},
				},
				FieldDirector:         textWithKeyword(),
				FieldCast:             textWithKeyword(),
				FieldReleaseDate:      map[string]any{"type": "date"},
				FieldStatus:           keyword(),
				FieldOriginalLanguage: keyword(),
				FieldVoteAverage:      map[string]any{"type": "float"},
				FieldVoteCount:        map[string]any{"type": "integer"},
			},
		},
	}
}
