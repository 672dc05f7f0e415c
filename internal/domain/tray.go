package domain

// TrayEntry is one circle in the story tray. The first entry is always the
// viewer's own create/open affordance and sits outside the viewed/unviewed
// ordering.
type TrayEntry struct {
	StoryID       string
	Author        User
	Self          bool
	Viewed        bool
	Verified      bool
	FollowerLabel string
}
