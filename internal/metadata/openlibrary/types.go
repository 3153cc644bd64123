package openlibrary

// Book is the subset of a search document the organizer uses.
type Book struct {
	Title    string   `json:"title"`
	Author   string   `json:"author,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
}

type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Title      string   `json:"title"`
	AuthorName []string `json:"author_name"`
	Subject    []string `json:"subject"`
}

func (d searchDoc) book() *Book {
	b := &Book{Title: d.Title, Subjects: d.Subject}
	if len(d.AuthorName) > 0 {
		b.Author = d.AuthorName[0]
	}
	return b
}
