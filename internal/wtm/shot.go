package wtm

// Shot is one still image pulled from whatthemovie.com. Title and Year are
// zero values when the shot has no published solution. A Shot is never
// mutated after the scraper returns it.
type Shot struct {
	ImageData         []byte
	ImageURL          string
	Title             string
	AlternativeTitles []string
	Year              int
}

// AcceptedTitles is the union of the primary title and the alternative
// titles, used as the candidate set for guess matching.
func (s *Shot) AcceptedTitles() []string {
	titles := make([]string, 0, len(s.AlternativeTitles)+1)
	if s.Title != "" {
		titles = append(titles, s.Title)
	}
	return append(titles, s.AlternativeTitles...)
}
