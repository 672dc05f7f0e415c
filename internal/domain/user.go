package domain

// VerifiedFollowerThreshold is the follower count at which an author gets the
// verified badge on their story circle.
const VerifiedFollowerThreshold = 10000

type User struct {
	ID            string
	DisplayName   string
	AvatarURL     string
	FollowerCount int
}

func (u User) Verified() bool {
	return u.FollowerCount >= VerifiedFollowerThreshold
}
