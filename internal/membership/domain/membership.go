package domain

// Membership links one user to one channel; direct channels carry two of them.
type Membership struct {
	MembershipID int64
	ChannelID    int64
	UserID       int64
}
