package domain

// ChannelTypeDirect marks a one-to-one conversation: exactly two members.
const ChannelTypeDirect = "direct"

// Channel is a conversation scoped to a fixed set of members.
// Immutable after creation.
type Channel struct {
	ChannelID   int64
	ChannelType string
	ChannelName string
}
