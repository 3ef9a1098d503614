package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mrlokans/library/internal/utils"
)

// Genre is a closed set of catalog categories. Unknown values collapse to GenreOther.
type Genre string

const (
	GenreFiction        Genre = "FICTION"
	GenreNonFiction     Genre = "NON_FICTION"
	GenreMystery        Genre = "MYSTERY"
	GenreRomance        Genre = "ROMANCE"
	GenreScienceFiction Genre = "SCIENCE_FICTION"
	GenreFantasy        Genre = "FANTASY"
	GenreThriller       Genre = "THRILLER"
	GenreHorror         Genre = "HORROR"
	GenreBiography      Genre = "BIOGRAPHY"
	GenreHistory        Genre = "HISTORY"
	GenreScience        Genre = "SCIENCE"
	GenreTechnology     Genre = "TECHNOLOGY"
	GenrePhilosophy     Genre = "PHILOSOPHY"
	GenrePoetry         Genre = "POETRY"
	GenreDrama          Genre = "DRAMA"
	GenreChildren       Genre = "CHILDREN"
	GenreYoungAdult     Genre = "YOUNG_ADULT"
	GenreCooking        Genre = "COOKING"
	GenreTravel         Genre = "TRAVEL"
	GenreSelfHelp       Genre = "SELF_HELP"
	GenreBusiness       Genre = "BUSINESS"
	GenreHealth         Genre = "HEALTH"
	GenreArt            Genre = "ART"
	GenreMusic          Genre = "MUSIC"
	GenreSports         Genre = "SPORTS"
	GenreOther          Genre = "OTHER"
)

// genreOrder is the menu order; position+1 is the genre index.
var genreOrder = []Genre{
	GenreFiction, GenreNonFiction, GenreMystery, GenreRomance, GenreScienceFiction,
	GenreFantasy, GenreThriller, GenreHorror, GenreBiography, GenreHistory,
	GenreScience, GenreTechnology, GenrePhilosophy, GenrePoetry, GenreDrama,
	GenreChildren, GenreYoungAdult, GenreCooking, GenreTravel, GenreSelfHelp,
	GenreBusiness, GenreHealth, GenreArt, GenreMusic, GenreSports, GenreOther,
}

var genreDisplayNames = map[Genre]string{
	GenreFiction:        "Fiction",
	GenreNonFiction:     "Non-Fiction",
	GenreMystery:        "Mystery",
	GenreRomance:        "Romance",
	GenreScienceFiction: "Science Fiction",
	GenreFantasy:        "Fantasy",
	GenreThriller:       "Thriller",
	GenreHorror:         "Horror",
	GenreBiography:      "Biography",
	GenreHistory:        "History",
	GenreScience:        "Science",
	GenreTechnology:     "Technology",
	GenrePhilosophy:     "Philosophy",
	GenrePoetry:         "Poetry",
	GenreDrama:          "Drama",
	GenreChildren:       "Children",
	GenreYoungAdult:     "Young Adult",
	GenreCooking:        "Cooking",
	GenreTravel:         "Travel",
	GenreSelfHelp:       "Self-Help",
	GenreBusiness:       "Business",
	GenreHealth:         "Health",
	GenreArt:            "Art",
	GenreMusic:          "Music",
	GenreSports:         "Sports",
	GenreOther:          "Other",
}

// Genres returns all genres in menu order.
func Genres() []Genre {
	out := make([]Genre, len(genreOrder))
	copy(out, genreOrder)
	return out
}

// DisplayName returns the human readable label. Unknown values render as "Other".
func (g Genre) DisplayName() string {
	if name, ok := genreDisplayNames[g]; ok {
		return name
	}
	return genreDisplayNames[GenreOther]
}

func (g Genre) String() string {
	return g.DisplayName()
}

// Normalize maps unknown values onto GenreOther.
func (g Genre) Normalize() Genre {
	if _, ok := genreDisplayNames[g]; ok {
		return g
	}
	return GenreOther
}

// ParseGenre resolves a display name or key (case-insensitive, trimmed).
// It never fails: anything unrecognized becomes GenreOther.
func ParseGenre(s string) Genre {
	needle := strings.TrimSpace(s)
	if needle == "" {
		return GenreOther
	}
	for _, g := range genreOrder {
		if utils.EqualFold(genreDisplayNames[g], needle) || utils.EqualFold(string(g), needle) {
			return g
		}
	}
	return GenreOther
}

// GenreFromIndex maps a 1-based menu index to a genre, defaulting to GenreOther.
func GenreFromIndex(index int) Genre {
	if index < 1 || index > len(genreOrder) {
		return GenreOther
	}
	return genreOrder[index-1]
}

// FormattedGenreList renders the numbered genre menu, one genre per line.
func FormattedGenreList() string {
	var sb strings.Builder
	for i, g := range genreOrder {
		fmt.Fprintf(&sb, "%2d. %s\n", i+1, g.DisplayName())
	}
	return sb.String()
}

func (g Genre) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.DisplayName())
}

func (g *Genre) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*g = ParseGenre(s)
	return nil
}

func (g Genre) MarshalYAML() (interface{}, error) {
	return g.DisplayName(), nil
}

func (g *Genre) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*g = ParseGenre(s)
	return nil
}

// Value stores the display name in SQL columns.
func (g Genre) Value() (driver.Value, error) {
	return g.DisplayName(), nil
}

func (g *Genre) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*g = GenreOther
	case string:
		*g = ParseGenre(v)
	case []byte:
		*g = ParseGenre(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Genre", value)
	}
	return nil
}
