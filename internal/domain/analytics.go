package domain

// TopRatedFilm is the highest-rated film of a bucket.
type TopRatedFilm struct {
	Title       string  `json:"title"`
	VoteAverage float64 `json:"vote_average"`
}

// MostVotedFilm is the film with the most votes in a bucket.
type MostVotedFilm struct {
	Title     string `json:"title"`
	VoteCount int    `json:"vote_count"`
}

// GenreStats is one bucket of the genre analysis.
type GenreStats struct {
	Genre       string         `json:"genre"`
	FilmCount   int64          `json:"film_count"`
	VoteAverage float64        `json:"vote_average"`
	TopFilm     *TopRatedFilm  `json:"top_film,omitempty"`
	PopularFilm *MostVotedFilm `json:"popular_film,omitempty"`
}

// DirectorStats is one bucket of the director analysis.
type DirectorStats struct {
	Director    string        `json:"director"`
	FilmCount   int64         `json:"film_count"`
	VoteAverage float64       `json:"vote_average"`
	TopFilm     *TopRatedFilm `json:"top_film,omitempty"`
}

// JobCount counts crew members holding a job within a department.
type JobCount struct {
	Job      string `json:"job"`
	JobCount int64  `json:"job_count"`
}

// CrewDepartment summarizes one department of a film's crew.
// The job counts only add up to CrewCount when every member has a job.
type CrewDepartment struct {
	Department string     `json:"departments"`
	CrewCount  int64      `json:"crew_count"`
	Jobs       []JobCount `json:"jobs"`
}

// YearCount is one bucket of the yearly release histogram.
type YearCount struct {
	Year      string `json:"year"`
	FilmCount int64  `json:"film_count"`
}
