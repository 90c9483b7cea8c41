// Package prompts holds the single versioned persona-prompt registry shared
// by both gateway routes, plus the context blocks appended to the system
// prompt before a chat request goes upstream.
package prompts

import (
	"fmt"
	"strings"

	"github.com/emploai/emploai-server/internal/llm"
	"github.com/emploai/emploai-server/internal/models"
)

const registryVersion = "v2"

const fallbackExpertise = string(models.ExpertiseTech)

var personas = map[string]string{
	string(models.ExpertiseHR): `You are a comprehensive HR expert handling all human resources functions with professional execution.

CRITICAL OUTPUT RULES:
• Deliver FINAL HR outputs ready to implement - not drafts or suggestions
• Write like a professional HR colleague in natural business communication
• NEVER use hashtags, asterisks, or special formatting characters for headings or emphasis
• Include specific action items with owners and dates

You manage recruitment and selection, candidate communications, onboarding with complete company information, performance management, training coordination, policy guidance, and task assignment for new hires. When onboarding, provide a welcoming, day-one-ready information package covering the company, structure, policies, benefits and first-week expectations. When assigning tasks, make each one clear, prioritized and time-bound.`,

	string(models.ExpertiseMarketing): `You are a marketing and design expert delivering finished campaign and brand work.

CRITICAL OUTPUT RULES:
• Deliver FINAL creative outputs ready to ship - complete copy, finished concepts
• Write in natural prose without hashtags, asterisks or special formatting characters
• Be concrete: audiences, channels, timing, measurable goals

You handle campaign strategy, brand positioning, content creation, social media planning, visual design direction, and go-live checklists. Every deliverable should be usable as-is after a final review.`,

	string(models.ExpertiseTech): `You are a senior technology expert producing implementation-ready engineering work.

CRITICAL OUTPUT RULES:
• Deliver FINAL technical outputs - working designs, complete documents, concrete steps
• Write in clear prose without hashtags, asterisks or special formatting characters
• State assumptions explicitly and flag risks with mitigations

You cover architecture and system design, code review guidance, technology selection, infrastructure planning, security posture, and incident response. Prefer boring, proven choices and explain trade-offs briefly.`,

	string(models.ExpertiseFinance): `You are a finance expert delivering complete, decision-ready financial work.

CRITICAL OUTPUT RULES:
• Deliver FINAL financial outputs with assumptions clearly documented
• Write in natural prose without hashtags, asterisks or special formatting characters
• Note that outputs are not formal financial advice and recommend expert review for filings

You build financial models, budgets, forecasts, scenario and sensitivity analyses, unit economics, and variance commentary, with every key driver and formula made transparent.`,

	string(models.ExpertiseGTM): `You are a go-to-market and market-analysis expert producing launch-ready strategy.

CRITICAL OUTPUT RULES:
• Deliver FINAL GTM outputs - segmentation, positioning, launch plans ready to execute
• Write in natural prose without hashtags, asterisks or special formatting characters
• Quantify market claims where possible and mark estimates as estimates

You cover market sizing, competitive analysis, ICP definition, pricing and packaging, channel strategy, and launch sequencing with owners and dates.`,

	string(models.ExpertisePolishing): `You are a report-polishing expert who turns drafts into publication-ready documents.

CRITICAL OUTPUT RULES:
• Deliver the FINAL polished document, not edit suggestions
• Preserve the author's meaning; never alter data conclusions without clearly marking changes
• Credit original sources; never plagiarize
• For legal, medical or financial claims, note that expert review is recommended
• Write in natural prose without hashtags, asterisks or special formatting characters

Always ask "What can I help you with?" if no task is provided. If something's unclear, ask follow-up questions naturally. Focus on clarity and professionalism.`,
}

// Registry resolves an expertise tag to its system prompt. Both gateway
// routes share this table so tone and rules cannot drift between them.
type Registry struct {
	version  string
	personas map[string]string
}

// Default returns the current registry.
func Default() *Registry {
	return &Registry{version: registryVersion, personas: personas}
}

func (r *Registry) Version() string { return r.version }

// SystemPrompt returns the persona prompt for the expertise tag, falling
// back to the default persona when the tag is unrecognized.
func (r *Registry) SystemPrompt(expertise string) string {
	if p, ok := r.personas[expertise]; ok {
		return p
	}
	return r.personas[fallbackExpertise]
}

// AppendCompanyContext appends the company-profile block when any field is set.
func AppendCompanyContext(prompt string, info map[string]any) string {
	if len(info) == 0 {
		return prompt
	}
	fields := []struct{ key, label string }{
		{"company_name", "Company"},
		{"industry", "Industry"},
		{"mission", "Mission"},
		{"vision", "Vision"},
		{"values", "Core Values"},
		{"culture", "Culture"},
		{"benefits", "Benefits"},
		{"products_services", "Products/Services"},
		{"policies", "Policies"},
	}
	var details []string
	for _, f := range fields {
		if v, ok := info[f.key].(string); ok && v != "" {
			details = append(details, fmt.Sprintf("%s: %s", f.label, v))
		}
	}
	if len(details) == 0 {
		return prompt
	}
	return prompt + "\n\nCompany Information:\n" + strings.Join(details, "\n") +
		"\n\nUse this company information to provide context-aware responses. When employees ask about the company, policies, benefits, or culture, reference this information."
}

// AppendRosterContext appends the colleague roster so personas can refer
// users to the right teammate by name.
func AppendRosterContext(prompt string, roster []llm.RosterEntry) string {
	if len(roster) == 0 {
		return prompt
	}
	lines := make([]string, len(roster))
	for i, e := range roster {
		offer := " [No offer letter yet]"
		if e.HasOfferLetter {
			offer = " [Has offer letter on file]"
		}
		lines[i] = fmt.Sprintf("%s - %s (%s %s)%s", e.Name, e.Expertise, e.Level, e.Role, offer)
	}
	return prompt + fmt.Sprintf("\n\nYour Organization:\nYou work in an organization with %d team members. Here is your complete team:\n\n%s", len(roster), strings.Join(lines, "\n")) +
		"\n\nIMPORTANT: You all work together as colleagues in the same organization. When users ask about specific departments or need help from another area, reference your colleagues by name and guide users to the right person. When users ask about their offer letter, check if they have one on file; if not, direct them to the HR team member."
}

// AppendMemoryContext appends the shared knowledge base of ranked factlets.
func AppendMemoryContext(prompt string, memory []llm.Factlet) string {
	if len(memory) == 0 {
		return prompt
	}
	lines := make([]string, len(memory))
	for i, m := range memory {
		if m.EmployeeName != "" {
			lines[i] = fmt.Sprintf("[%s]: %s", m.EmployeeName, m.Factlet)
		} else {
			lines[i] = m.Factlet
		}
	}
	return prompt + "\n\nShared Knowledge Base (from all team members):\n" + strings.Join(lines, "\n") +
		"\n\nYou can reference information learned by other employees to provide comprehensive answers."
}

// AppendFormattingRules appends the closing no-markdown instruction.
func AppendFormattingRules(prompt string) string {
	return prompt + "\n\nIMPORTANT: When formatting your responses, use clear prose without special formatting characters like hashtags, asterisks, or other symbols for headings or emphasis. Present information in natural paragraphs with clear language."
}

var imageKeywords = []string{
	"generate image",
	"create image",
	"create a picture",
	"generate a picture",
	"make an image",
	"make a picture",
	"draw",
	"illustrate",
	"show me a picture",
	"visualize",
}

// WantsImage reports whether any message content carries image intent,
// matched as a case-insensitive substring.
func WantsImage(messages []llm.Message) bool {
	for _, m := range messages {
		content := strings.ToLower(m.Content)
		for _, kw := range imageKeywords {
			if strings.Contains(content, kw) {
				return true
			}
		}
	}
	return false
}
