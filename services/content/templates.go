package content

import "strings"

// Template banks keyed by conversation category. The peer warmup traffic cycles
// through these so mailbox providers see varied, human-looking threads even
// when no AI provider is configured.

var contentCategories = []string{
	"meeting_followup",
	"project_update",
	"question",
	"introduction",
	"thank_you",
	"scheduling",
	"feedback_request",
	"resource_sharing",
}

var subjectTemplates = map[string][]string{
	"meeting_followup": {"Following up on our chat", "Great meeting today", "Quick follow-up"},
	"project_update":   {"Project status update", "Quick update on progress", "FYI - Project milestone"},
	"question":         {"Quick question for you", "Need your input", "Thoughts on this?"},
	"introduction":     {"Nice to connect", "Great to meet you", "Reaching out"},
	"thank_you":        {"Thanks for your help", "Appreciated your time", "Thank you!"},
	"scheduling":       {"Can we find time to chat?", "Scheduling a quick call", "When works for you?"},
	"feedback_request": {"Would love your feedback", "Your thoughts?", "Quick review needed"},
	"resource_sharing": {"Thought you might find this useful", "Sharing a resource", "Check this out"},
}

var bodyTemplates = map[string][]string{
	"meeting_followup": {
		"Hi {receiver},\n\nIt was great chatting with you earlier. I wanted to follow up.\n\nBest regards,\n{sender}",
		"Hey {receiver},\n\nThanks for taking the time to meet today.\n\nCheers,\n{sender}",
	},
	"project_update": {
		"Hi {receiver},\n\nJust a quick update - we are making good progress.\n\nBest,\n{sender}",
	},
	"question": {
		"Hi {receiver},\n\nHope you are having a good day. Quick question - would love your perspective.\n\nThanks,\n{sender}",
	},
	"introduction": {
		"Hi {receiver},\n\nGreat to connect! Would love to find time to chat.\n\nBest,\n{sender}",
	},
	"thank_you": {
		"Hi {receiver},\n\nJust wanted to say thanks for your help.\n\nBest regards,\n{sender}",
	},
	"scheduling": {
		"Hi {receiver},\n\nWould you have time this week for a quick call?\n\nThanks,\n{sender}",
	},
	"feedback_request": {
		"Hi {receiver},\n\nI have been working on a proposal and would value your feedback.\n\nAppreciate it,\n{sender}",
	},
	"resource_sharing": {
		"Hi {receiver},\n\nI came across something relevant to you. Let me know what you think!\n\nBest,\n{sender}",
	},
}

var replyTemplates = []string{
	"Thanks for reaching out! Let me get back to you soon.\nBest,\n{sender}",
	"Appreciate the update! I will review shortly.\nCheers,\n{sender}",
	"Great to hear from you! Let us connect on this.\nRegards,\n{sender}",
	"Got it, thanks for the heads up!\nTalk soon,\n{sender}",
	"Thanks! Will take a look.\nBest,\n{sender}",
}

func renderTemplate(tpl, senderName, receiverName string) string {
	return strings.NewReplacer("{sender}", senderName, "{receiver}", receiverName).Replace(tpl)
}

// textToHTML wraps plain text paragraphs in <p> tags with <br> line breaks,
// matching what the providers return for the HTML body.
func textToHTML(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	for i, p := range paragraphs {
		paragraphs[i] = "<p>" + strings.ReplaceAll(p, "\n", "<br>") + "</p>"
	}
	return strings.Join(paragraphs, "")
}
