package dto

type GenreRequest struct {
	Name string `json:"name" binding:"max=200" example:"Fantasy"`
}

type AuthorRequest struct {
	FirstName   string `json:"first_name" binding:"max=100" example:"Joanne"`
	LastName    string `json:"last_name" binding:"max=100" example:"Rowling"`
	Description string `json:"description" binding:"max=5000" example:"British author"`
}

type BookRequest struct {
	Title    string `json:"title" binding:"max=200" example:"Harry Potter and the Philosopher's Stone"`
	Summary  string `json:"summary" binding:"max=1000" example:"A boy discovers he is a wizard."`
	ISBN     string `json:"isbn" binding:"max=13" example:"9780747532699"`
	AuthorID *uint  `json:"author_id" example:"1"`
	GenreIDs []uint `json:"genre_ids" example:"1,2"`
}

// ReviewRequest is a reader's review of a book. The reviewer is always the
// caller, so there is no reviewer field.
type ReviewRequest struct {
	Content string `json:"content" binding:"max=1000" example:"Could not put it down."`
}
