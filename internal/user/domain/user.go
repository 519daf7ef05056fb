package domain

import "time"

type ID string

type Role string

const (
	RoleStudent    Role = "student"
	RoleResearcher Role = "researcher"
	RoleAdmin      Role = "admin"
)

type User struct {
	ID                 ID
	Username           string
	Email              string
	PasswordHash       string
	Role               Role
	Interests          []string
	FollowedAuthors    []string
	ExcludedCategories []string
	Following          []ID
	Followers          []ID
	LastSeenActivity   time.Time
	CreatedAt          time.Time
}

// Summary is the public projection used in follower lists and search results.
type Summary struct {
	ID        ID
	Username  string
	CreatedAt time.Time
}

// Profile is the public view of a user, password and email stripped.
type Profile struct {
	ID              ID
	Username        string
	Role            Role
	Interests       []string
	FollowedAuthors []string
	SavedPapers     []string
	Followers       []Summary
	Following       []Summary
	FollowersCount  int
	FollowingCount  int
}

func (u User) IsFollowing(target ID) bool {
	for _, id := range u.Following {
		if id == target {
			return true
		}
	}
	return false
}
