package actions

import "kairo/src/content"

// Default returns the built-in catalog.
func Default() *Catalog {
	c := New()

	c.OnlyFor(content.KindText, Action{
		ID: FixGrammar, Label: "Fix Grammar", Icon: "🔍",
		Instruction: "Fix all grammar and spelling mistakes in this text. If the text contains multiple points or paragraphs starting with similar patterns, preserve the list structure with proper numbering (1. 2. etc) and add a blank line between each numbered item. Return only the corrected text with proper spacing.",
	})
	c.OnlyFor(content.KindText, Action{
		ID: MakeConcise, Label: "Make Concise", Icon: "✂️",
		Instruction: "Make this text more concise while keeping all important information. If the text contains multiple points, preserve the numbered list format with blank lines between items. Return only the concise version with proper spacing.",
	})
	c.OnlyFor(content.KindText, Action{
		ID: Professional, Label: "Professional", Icon: "✍️",
		Instruction: "Rewrite this text to be more professional and polished. If the text contains multiple points, preserve the numbered list format. Return only the rewritten text.",
	})
	c.OnlyFor(content.KindText, Action{
		ID: Translate, Label: "Translate", Icon: "🌍",
		Instruction: "Translate this text to {language}. Preserve any numbered list formatting. Return only the translation.",
	})
	c.OnlyFor(content.KindText, Action{
		ID: Expand, Label: "Expand", Icon: "📝",
		Instruction: "Expand this text with more detail and context while maintaining the same tone. If the text has multiple points, keep the numbered format. Return only the expanded text.",
	})
	c.OnlyFor(content.KindText, Action{
		ID: Simplify, Label: "Simplify", Icon: "💬",
		Instruction: "Simplify this text to be easily understood by a general audience. If the text has multiple points, keep them numbered. Return only the simplified text.",
	})

	c.OnlyFor(content.KindImage, Action{
		ID: Describe, Label: "Describe", Icon: "🖼️",
		Instruction: "Describe what is shown in this screenshot: the application or page, the important elements and any visible state. Be brief and concrete.",
	})
	c.OnlyFor(content.KindImage, Action{
		ID: ExtractText, Label: "Extract Text", Icon: "🔤",
		Instruction: "Extract all text visible in this screenshot. Return only the raw text with no formatting, no markdown and no explanations, preserving line breaks from the visual layout.",
	})

	shared := []struct {
		text, image Action
	}{
		{
			text: Action{ID: Summarize, Label: "Summarize", Icon: "📋",
				Instruction: "Create a clear, concise summary of this text. If the original has multiple points, summarize as a numbered list. Return only the summary."},
			image: Action{ID: Summarize, Label: "Summarize", Icon: "📋",
				Instruction: "Summarize the information shown in this screenshot in a few sentences. Return only the summary."},
		},
		{
			text: Action{ID: Explain, Label: "Explain", Icon: "💡",
				Instruction: "Explain this text in simple terms that anyone can understand. If there are multiple points, keep them numbered. Be brief and clear."},
			image: Action{ID: Explain, Label: "Explain", Icon: "💡",
				Instruction: "Explain what this screenshot shows in simple terms, including any error messages, charts or code it contains. Be brief and clear."},
		},
		{
			text: Action{ID: KeyPoints, Label: "Key Points", Icon: "🎯",
				Instruction: "Extract the key points from this text as a numbered list (1. 2. 3. etc). Return only the numbered points."},
			image: Action{ID: KeyPoints, Label: "Key Points", Icon: "🎯",
				Instruction: "Extract the key points from this screenshot as a numbered list (1. 2. 3. etc). Return only the numbered points."},
		},
		{
			text:  Action{ID: Custom, Label: "Ask…", Icon: "✨"},
			image: Action{ID: Custom, Label: "Ask…", Icon: "✨"},
		},
	}
	for _, s := range shared {
		c.Add(content.KindText, s.text)
		c.Add(content.KindImage, s.image)
	}

	return c
}
