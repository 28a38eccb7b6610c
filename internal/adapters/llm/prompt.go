package llm

import (
	"fmt"
	"strings"

	"github.com/healthtrack/symptom-agent/internal/domain"
)

// chatHistoryWindow is how many trailing messages the chat prompt
// carries as context. The report prompt always gets the full history.
const chatHistoryWindow = 5

const chatGuidelines = `IMPORTANT GUIDELINES:
- Never recommend specific medications or prescribe treatments
- Always encourage consulting with healthcare professionals
- Focus on symptom tracking, lifestyle recommendations, and general health information
- Provide supportive, empathetic responses
- Ask follow-up questions to better understand symptoms
- Suggest keeping detailed records for healthcare providers
- If something off-topic arises, gently steer the conversation back to the user's health concerns; do not answer off-topic questions
- Reply in the language the user is communicating in; default is English
- Keep replies brief and well formatted, using bullet points
- Do not add medical-advice disclaimers unless the user asks
- Do not ask the user to rate pain on a numeric scale`

// BuildChatPrompt assembles the chat-mode prompt: profile and condition
// header, behavioral guidelines, the last few messages as context and
// the latest user message.
func BuildChatPrompt(history []domain.Message, profile domain.UserProfile, condition string) string {
	var b strings.Builder

	b.WriteString("You are a helpful AI health assistant for symptom tracking.\n")
	fmt.Fprintf(&b, "User Profile: Age: %s, Gender: %s\n", ageLabel(profile), genderLabel(profile))
	if condition != "" {
		fmt.Fprintf(&b, "Current condition being discussed: %s\n", condition)
	}
	b.WriteString("\n")
	b.WriteString(chatGuidelines)
	b.WriteString("\n\nPrevious conversation context:\n")

	window := history
	if len(window) > chatHistoryWindow {
		window = window[len(window)-chatHistoryWindow:]
	}
	for _, m := range window {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}

	b.WriteString("\nPlease respond helpfully while adhering to these guidelines.")

	if len(history) > 0 {
		fmt.Fprintf(&b, "\n\nUser: %s", history[len(history)-1].Content)
	}

	return b.String()
}

// BuildReportPrompt assembles the report-mode prompt over the entire
// history, with the formatting constraints the exported document relies
// on (no dates, English output, no unset profile fields, no AI
// self-disclosure).
func BuildReportPrompt(history []domain.Message, profile domain.UserProfile, condition string) string {
	var b strings.Builder

	b.WriteString("Generate a comprehensive health report based on the following symptom tracking data:\n\n")
	if !profile.Empty() {
		fmt.Fprintf(&b, "User Profile: Age: %s, Gender: %s\n", ageLabel(profile), genderLabel(profile))
	}
	if condition != "" {
		fmt.Fprintf(&b, "Condition: %s\n", condition)
	}

	b.WriteString("\nConversation History:\n")
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}

	b.WriteString(`
Please create a detailed report that includes:
1. Summary of reported symptoms
2. Patterns and trends observed
3. Symptom progression
4. Suggested questions to ask healthcare providers
5. Lifestyle factors mentioned
6. Overall health tracking summary

Constraints:
- Do not include any dates in the report
- Write the report in English regardless of the conversation language
- Mention age and gender only if they are present in the profile above
- Do not mention that the report was generated by an AI; it should read as written by a person

Format the report professionally for presentation to healthcare providers.`)

	return b.String()
}

func ageLabel(p domain.UserProfile) string {
	if p.Age <= 0 {
		return "not specified"
	}
	return fmt.Sprintf("%d", p.Age)
}

func genderLabel(p domain.UserProfile) string {
	if p.Gender == "" {
		return "not specified"
	}
	return string(p.Gender)
}
