package config

// Default prompt templates. They use text/template syntax; the fields
// available to each are documented on the extractor's prompt data types.

const DefaultSystemPrompt = `You are an assistant that finds action items (TODOs) in workplace communication.
Return ONLY a JSON array. Each element must be an object with these keys:
  "description": short imperative sentence describing the work,
  "urgency": one of "critical", "high", "medium", "low",
  "confidence": number between 0 and 1,
  "deadline": free text date or null.
Return [] when there is nothing to do. Do not wrap the array in prose.`

const DefaultEmailPrompt = `Email
From: {{.From}}
Subject: {{.Subject}}
Date: {{.Date}}

{{.Body}}`

const DefaultJiraPrompt = `Jira issue {{.IssueKey}}: {{.Summary}}
Status: {{.Status}}
Assignee: {{.Assignee}}
Priority: {{.Priority}}

Description:
{{.Description}}

Recent comments:
{{.Comments}}`

const DefaultSlackPrompt = `Slack message in #{{.Channel}}
From: {{.Sender}}
Date: {{.Date}}

{{.Message}}

Thread: {{.ThreadContext}}`

const DefaultExecutivePrompt = `Write a short executive summary of the {{.Team}} team's activity for {{.Date}}.
Cover key highlights, blockers and recommended next steps in plain prose.

Slack activity:
{{.SlackActivity}}

Jira tickets:
{{.JiraActivity}}`

const DefaultChannelPrompt = `Summarize the recent discussion in Slack channel #{{.Channel}} in two or three sentences.
Mention decisions and open questions.

{{.Messages}}`

const DefaultSubjectTemplate = "Daily Team Summary - {{.Team}} - {{.Date}}"
