package service

// Member identifies one chat-platform user in the invoking context.
type Member struct {
	Ref         string
	DisplayName string
}

// Room identifies one destination a match announcement can be posted to.
type Room struct {
	Ref      string
	Name     string
	Postable bool
}

// Caller carries the identity and capabilities of the user invoking a
// command, plus the resolution functions the surrounding platform provides.
// The resolution rules themselves (username, @-mention, tag) belong to the
// platform, not to this core.
type Caller struct {
	Member     Member
	GuildRef   string
	ChannelRef string

	// CanManage reports whether the caller holds the manage capability
	// required by mutating commands other than vote.
	CanManage bool

	// ResolveMember maps a user reference to a concrete member.
	ResolveMember func(ref string) (Member, error)
	// ResolveRoom maps a room reference to a concrete room.
	ResolveRoom func(ref string) (Room, error)
}
