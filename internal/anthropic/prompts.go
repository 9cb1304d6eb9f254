package anthropic

import "fmt"

const analyzePrompt = `Analyze this document image and extract actionable tasks. This could be a bill, form, letter, receipt, or any paperwork.

IMPORTANT: First, check if the image is clear and readable. If the image is blurry, dark, cut off, or otherwise difficult to read clearly, return this special error task:
[{
  "title": "Image Quality Issue - Please Retake Photo",
  "description": "The image appears to be [blurry/dark/cut off/unclear]. Please retake the photo with better lighting and focus.",
  "due_date": null,
  "priority": "high",
  "tags": [],
  "ai_summary": "I couldn't read this document clearly. Try these tips: 1) Use good lighting, 2) Hold camera steady, 3) Make sure entire document is visible, 4) Avoid shadows or glare.",
  "needs_retake": true
}]

If the image IS clear and readable, look for:
- What needs to be done (pay bill, fill form, respond to letter, etc.)
- Any deadlines or due dates
- Important amounts or details
- Priority level based on urgency
- Appropriate tags based on document type and content

TAGS: Intelligently assign one or more tags from this list based on the document content:
- "work" - Work-related documents, professional correspondence
- "personal" - Personal matters, non-work items
- "bills" - Bills, invoices, payment due
- "medical" - Medical records, prescriptions, health insurance
- "legal" - Legal documents, contracts, official forms
- "finance" - Financial documents, bank statements, tax forms
- "home" - Home maintenance, utilities, property related
- "auto" - Car-related, vehicle maintenance, insurance

Return a JSON array of tasks with this EXACT format:
[{
  "title": "Brief, clear task title (e.g., 'Pay Electric Bill')",
  "description": "Key details like amounts, dates, account numbers",
  "due_date": timestamp_in_milliseconds_or_null,
  "priority": "high" | "medium" | "low",
  "tags": ["tag1", "tag2"],
  "ai_summary": "Helpful context about this task and how to complete it",
  "needs_retake": false
}]

Rules:
- If you see a due date, convert it to milliseconds timestamp
- If no due date is visible, use null
- Priority: high for bills/urgent items, medium for forms, low for FYI items
- Tags: Assign 1-3 relevant tags based on content (e.g., electric bill gets ["bills", "home"])
- Be specific in descriptions (include amounts, dates, account numbers)
- Keep title under 60 characters
- Return ONLY valid JSON, no markdown or explanation

If the document has multiple tasks (e.g., bill with multiple line items), create separate tasks for each.`

var draftInstructions = map[DraftType]string{
	DraftEmail:  "Write a professional email responding to this task. Include a clear subject line, appropriate greeting, body, and closing.",
	DraftLetter: "Write a formal letter addressing this task. Include proper formatting with date, address, salutation, body paragraphs, and signature line.",
	DraftForm:   "Write text to fill out a form related to this task. Provide clear, concise responses that would work in form fields.",
	DraftAppeal: "Write a persuasive appeal or request letter for this task. Be professional but assertive, clearly state the issue and desired resolution.",
}

func draftPrompt(task Task, draftType DraftType) string {
	description := task.Description
	if description == "" {
		description = "No additional details"
	}

	prompt := fmt.Sprintf("I need help with this task:\n\nTask: %s\nDescription: %s\n", task.Title, description)
	if task.AISummary != "" {
		prompt += fmt.Sprintf("Context: %s\n", task.AISummary)
	}

	prompt += fmt.Sprintf(`
%s

Important guidelines:
- Be professional and courteous
- Be specific and reference details from the task
- Keep it concise and clear
- Use proper formatting
- Do not include placeholder text like [Your Name] - just write the content
- For emails, start with "Subject:" then the email body
- Make it ready to send/use

Write the %s now:`, draftInstructions[draftType], draftType)

	return prompt
}
