package domain

// Preferences drive the recommendation pool: interests and followed
// authors become search terms, excluded categories filter results.
type Preferences struct {
	Interests          []string
	FollowedAuthors    []string
	ExcludedCategories []string
}

type Field string

const (
	FieldInterest         Field = "interest"
	FieldFollowedAuthor   Field = "followed_author"
	FieldExcludedCategory Field = "excluded_category"
)

func (f Field) Valid() bool {
	switch f {
	case FieldInterest, FieldFollowedAuthor, FieldExcludedCategory:
		return true
	}
	return false
}
