package extracttodos

// EmailPromptData is available to the email prompt template.
type EmailPromptData struct {
	From    string
	Subject string
	Date    string
	Body    string
}

// JiraPromptData is available to the jira prompt template.
type JiraPromptData struct {
	IssueKey    string
	Summary     string
	Status      string
	Assignee    string
	Priority    string
	Description string
	Comments    string
}

// SlackPromptData is available to the slack prompt template.
type SlackPromptData struct {
	Channel       string
	Sender        string
	Date          string
	Message       string
	ThreadContext string
}

// rawItem is one source record ready for the model.
type rawItem struct {
	ID       string
	Data     interface{}
	Metadata map[string]string
}

const (
	emailBodyLimit       = 2000
	jiraDescriptionLimit = 1000
	jiraCommentLimit     = 200
	jiraCommentsLimit    = 1000
	jiraRecentComments   = 5
	slackMessageLimit    = 500
)
