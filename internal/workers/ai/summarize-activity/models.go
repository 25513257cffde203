package summarizeactivity

import "work-planner/internal/models"

// NotAvailable replaces any summary the model could not produce.
const NotAvailable = "AI analysis not available"

const messageTextLimit = 150

type Input struct {
	Team     string
	Date     string
	Channels []models.SlackChannelActivity
	Issues   []models.JiraIssue
}

type ChannelSummary struct {
	ChannelID    string `json:"channelId"`
	ChannelName  string `json:"channelName"`
	MessageCount int    `json:"messageCount"`
	Summary      string `json:"summary"`
	Available    bool   `json:"available"`
}

type Output struct {
	Executive          string           `json:"executive"`
	ExecutiveAvailable bool             `json:"executiveAvailable"`
	Channels           []ChannelSummary `json:"channels"`
}

type executiveData struct {
	Team          string
	Date          string
	SlackActivity string
	JiraActivity  string
}

type channelData struct {
	Channel  string
	Messages string
}
