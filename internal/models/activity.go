// internal/models/activity.go
package models

import "time"

// SlackMessage is a chat message parsed from conversations.history.
type SlackMessage struct {
	ChannelID     string    `json:"channelId"`
	ChannelName   string    `json:"channelName"`
	UserID        string    `json:"userId"`
	UserName      string    `json:"userName"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
	TS            string    `json:"ts"`
	ThreadTS      string    `json:"threadTs,omitempty"`
	ReplyCount    int       `json:"replyCount,omitempty"`
	ThreadContext string    `json:"threadContext,omitempty"`
}

// SlackChannelActivity groups the messages read from one channel.
type SlackChannelActivity struct {
	ChannelID   string         `json:"channelId"`
	ChannelName string         `json:"channelName"`
	Messages    []SlackMessage `json:"messages"`
}

// JiraComment is one comment on an issue.
type JiraComment struct {
	Author  string    `json:"author"`
	Body    string    `json:"body"`
	Created time.Time `json:"created"`
}

// JiraIssue is the subset of issue fields the planner uses.
type JiraIssue struct {
	Key         string        `json:"key"`
	Summary     string        `json:"summary"`
	Status      string        `json:"status"`
	Assignee    string        `json:"assignee"`
	Priority    string        `json:"priority"`
	IssueType   string        `json:"issueType"`
	Description string        `json:"description"`
	Updated     time.Time     `json:"updated"`
	URL         string        `json:"url"`
	Comments    []JiraComment `json:"comments,omitempty"`
}

// EmailMessage is an inbox message reduced to its text content.
type EmailMessage struct {
	UID     uint32    `json:"uid"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Date    time.Time `json:"date"`
	Body    string    `json:"body"`
}
