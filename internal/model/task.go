package model

// MessageIdentity addresses one Slack message. Timestamp is the message ts
// ("1700000000.000100"), compared as an opaque string.
type MessageIdentity struct {
	ChannelID string
	Timestamp string
}

// TaskMessage is a search hit carrying the task reaction. It lives for one run.
type TaskMessage struct {
	ID          MessageIdentity
	Permalink   string
	Text        string
	ChannelName string
}
